package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Word is a vocabulary entry.
type Word struct {
	ID               string `json:"id,omitempty"`
	VocabularyID     string `json:"vocabularyId"`
	Text             string `json:"text"`
	PartOfSpeech     string `json:"partOfSpeech"`
	MeaningInChinese string `json:"meaningInChinese"`
	MeaningInEnglish string `json:"meaningInEnglish"`
}

// CreateWord adds a word to its vocabulary.
func (c *Client) CreateWord(ctx context.Context, word Word) error {
	if strings.TrimSpace(word.VocabularyID) == "" {
		return fmt.Errorf("api: word requires a vocabulary id")
	}
	req, err := c.jsonRequest(ctx, http.MethodPost, "/v1/words", word)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// ListWords fetches every word in a vocabulary.
func (c *Client) ListWords(ctx context.Context, vocabularyID string) ([]Word, error) {
	path := fmt.Sprintf("/v1/vocabularies/%s/words", url.PathEscape(vocabularyID))
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil, "")
	if err != nil {
		return nil, err
	}
	var words []Word
	if err := c.do(req, &words); err != nil {
		return nil, err
	}
	return words, nil
}
