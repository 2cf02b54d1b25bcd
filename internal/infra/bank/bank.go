package infra_bank

import (
	"encoding/json"
	"log"
	"os"

	"github.com/bortnikau/quizparty/core/internal/model"
	"github.com/google/uuid"
)

type questionDTO struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type fileDTO struct {
	Questions []questionDTO `json:"questions"`
}

// Bank is the global question pool, loaded once at process start and
// read-only afterwards. Rooms sample from it at creation time.
type Bank struct {
	questions []model.Question
}

func MustLoad(path string) *Bank {
	bank, err := Load(path)
	if err != nil {
		log.Fatalf("failed to load question bank from %s: %v", path, err)
	}
	return bank
}

func Load(path string) (*Bank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file fileDTO
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(file.Questions))
	for _, q := range file.Questions {
		questions = append(questions, model.Question{
			ID:       uuid.New(),
			Text:     q.Text,
			Category: q.Category,
		})
	}
	return &Bank{questions: questions}, nil
}

func (b *Bank) Questions() []model.Question {
	return b.questions
}
