package testutils

import (
	"time"

	resultservice "github.com/Black-And-White-Club/typer-master/app/modules/result/application"
	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the seed, for reproducing a failing run.
func (g *TestDataGenerator) Seed() int64 {
	return g.seed
}

// GenerateSubmission returns a plausible typing-test result.
func (g *TestDataGenerator) GenerateSubmission() resultservice.SubmitInput {
	accuracy := g.faker.Float64Range(60, 100)
	return resultservice.SubmitInput{
		Username:     g.faker.Username(),
		WPM:          g.faker.Float64Range(10, 160),
		Accuracy:     accuracy,
		RealAccuracy: accuracy - g.faker.Float64Range(0, 5),
		Text:         g.faker.Sentence(12),
	}
}

// GenerateSubmissions returns n results.
func (g *TestDataGenerator) GenerateSubmissions(n int) []resultservice.SubmitInput {
	out := make([]resultservice.SubmitInput, n)
	for i := range out {
		out[i] = g.GenerateSubmission()
	}
	return out
}
