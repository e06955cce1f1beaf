// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
)

// MaxAudioSize caps voice uploads at 25MB.
const MaxAudioSize = 25 * 1024 * 1024

// TranscribeVoice uploads an audio file for transcription. When
// processWithAI is true the backend also runs the transcript through the
// chat model and fills Transcription.AIResponse.
func (c *Client) TranscribeVoice(ctx context.Context, filename string, audio io.Reader, modelID string, processWithAI bool) (*Transcription, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	n, err := io.Copy(part, io.LimitReader(audio, MaxAudioSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if n > MaxAudioSize {
		return nil, fmt.Errorf("audio file too large (>%d bytes)", MaxAudioSize)
	}

	if modelID != "" {
		if err := writer.WriteField("model", modelID); err != nil {
			return nil, fmt.Errorf("failed to build upload: %w", err)
		}
	}
	if err := writer.WriteField("process_with_ai", fmt.Sprintf("%t", processWithAI)); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.apiPath+"/voice/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Multipart body: set auth headers manually, not the JSON content type.
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.initData != "" {
		req.Header.Set("Authorization", "tma "+c.initData)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, handleErrorResponse(resp.StatusCode, data)
	}

	var out Transcription
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
