package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexImagen edits images via Vertex AI Imagen. It only supports the edit
// path; pair it with a generating client through WithEditor.
type VertexImagen struct {
	projectID          string
	location           string
	model              string
	serviceAccountJSON string
}

// VertexImagenConfig describes how to connect to Imagen.
type VertexImagenConfig struct {
	ProjectID          string
	Location           string
	Model              string
	ServiceAccountJSON string
}

// NewVertexImagen wires a VertexImagen client.
func NewVertexImagen(cfg VertexImagenConfig) *VertexImagen {
	return &VertexImagen{
		projectID:          strings.TrimSpace(cfg.ProjectID),
		location:           strings.TrimSpace(cfg.Location),
		model:              strings.TrimSpace(cfg.Model),
		serviceAccountJSON: strings.TrimSpace(cfg.ServiceAccountJSON),
	}
}

// Generate is not supported by the Imagen edit endpoint.
func (v *VertexImagen) Generate(_ context.Context, _, _ string) ([]byte, error) {
	return nil, fmt.Errorf("imagen: text-to-image generation not supported")
}

// Edit runs an Imagen edit request using the first input image as base.
func (v *VertexImagen) Edit(ctx context.Context, req EditRequest) ([]byte, error) {
	if v == nil || v.projectID == "" || v.location == "" || v.model == "" {
		return nil, fmt.Errorf("imagen: missing project/location/model")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("imagen: prompt is required")
	}
	if len(req.Images) == 0 {
		return nil, fmt.Errorf("imagen: reference image is required")
	}

	instance, err := structpb.NewValue(map[string]any{
		"prompt": req.Prompt,
		"image": map[string]any{
			"bytesBase64Encoded": base64.StdEncoding.EncodeToString(req.Images[0].Data),
		},
	})
	if err != nil {
		return nil, err
	}

	params, err := structpb.NewValue(map[string]any{
		"sampleCount": 1,
		"editMode":    "inpainting-free-form",
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", v.projectID, v.location, v.model)
	options := []option.ClientOption{option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", v.location))}
	if v.serviceAccountJSON != "" {
		options = append(options, option.WithCredentialsJSON([]byte(v.serviceAccountJSON)))
	}

	client, err := aiplatform.NewPredictionClient(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("imagen: prediction client: %w", err)
	}
	defer client.Close()

	resp, err := client.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:   endpoint,
		Instances:  []*structpb.Value{instance},
		Parameters: params,
	})
	if err != nil {
		return nil, fmt.Errorf("imagen: predict: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return nil, ErrNoImage
	}

	field := resp.Predictions[0].GetStructValue().GetFields()["bytesBase64Encoded"]
	if field == nil {
		return nil, ErrNoImage
	}

	data, err := base64.StdEncoding.DecodeString(field.GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("imagen: decode result: %w", err)
	}
	return data, nil
}
