package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcos-nsantos/asset-pipeline/internal/usecase/upload"
)

type UploadTargetResponse struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type SignUploadResponse struct {
	UploadID     uuid.UUID            `json:"upload_id"`
	UploadTarget UploadTargetResponse `json:"upload_target"`
	ExpiresAt    time.Time            `json:"session_expires_at"`
}

type CompleteUploadResponse struct {
	ImageAsset ImageAssetResponse `json:"image_asset"`
	Warnings   []string           `json:"warnings,omitempty"`
}

func SignResultToResponse(result *upload.SignResult) SignUploadResponse {
	headers := result.Target.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	return SignUploadResponse{
		UploadID: result.UploadID,
		UploadTarget: UploadTargetResponse{
			URL:       result.Target.URL,
			Method:    result.Target.Method,
			Headers:   headers,
			ExpiresAt: result.Target.ExpiresAt,
		},
		ExpiresAt: result.ExpiresAt,
	}
}

func CompleteResultToResponse(result *upload.CompleteResult) CompleteUploadResponse {
	return CompleteUploadResponse{
		ImageAsset: ImageAssetFromEntity(result.Asset),
		Warnings:   result.Warnings,
	}
}
