package tokens

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
	encodingErr  error
)

func getEncoding() (*tiktoken.Tiktoken, error) {
	encodingOnce.Do(func() {
		encoding, encodingErr = tiktoken.GetEncoding("cl100k_base")
	})
	return encoding, encodingErr
}

// Encode returns the BPE token ids for text.
func Encode(text string) []int {
	if text == "" {
		return nil
	}
	enc, err := getEncoding()
	if err != nil {
		return nil
	}
	return enc.Encode(text, nil, nil)
}

// Count returns the number of tokens in text. End-of-text sentinels are
// stripped first so user-controlled input cannot skew the count.
func Count(text string) int {
	text = strings.ReplaceAll(text, "<|endoftext|>", "")
	if text == "" {
		return 0
	}
	return len(Encode(text))
}
