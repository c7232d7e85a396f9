package texthandlers

import (
	"context"

	textservice "github.com/Black-And-White-Club/typer-master/app/modules/text/application"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	GenerateFunc func(ctx context.Context, class textservice.LengthClass) string
	StatusFunc   func() textservice.Status

	classes []textservice.LengthClass
}

func (f *FakeService) Generate(ctx context.Context, class textservice.LengthClass) string {
	f.classes = append(f.classes, class)
	if f.GenerateFunc != nil {
		return f.GenerateFunc(ctx, class)
	}
	return textservice.FallbackText
}

func (f *FakeService) Status() textservice.Status {
	if f.StatusFunc != nil {
		return f.StatusFunc()
	}
	return textservice.StatusReady
}

var _ textservice.Service = (*FakeService)(nil)
