package metadata

import (
	"encoding/json"
	"fmt"
)

// DecodeSession разбирает JSON метаданных сессии
func DecodeSession(data []byte) (*SessionSidecar, error) {
	var s SessionSidecar
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: session: %v", ErrParse, err)
	}
	return &s, nil
}

// DecodeVideo разбирает JSON метаданных видео
func DecodeVideo(data []byte) (*VideoSidecar, error) {
	var v VideoSidecar
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: video: %v", ErrParse, err)
	}
	return &v, nil
}
