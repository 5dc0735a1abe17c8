package service

import (
	"context"
	"testing"

	"ship-framework-be/internal/dto"
	"ship-framework-be/pkg/ideation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestSettingsUpdate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	svc := NewSettingsService(h.registry, NewDomainEvents(nil, h.log), h.log)

	got, err := svc.Get(ctx, h.ws)
	require.NoError(t, err)
	assert.Equal(t, ideation.DefaultSettings(), got)

	tests := []struct {
		name string
		req  dto.UpdateSettingsRequest
		want ideation.Settings
	}{
		{
			name: "enable deep reasoning",
			req:  dto.UpdateSettingsRequest{DeepReasoning: ptr(true)},
			want: ideation.Settings{Temperature: 0.7, Model: ideation.ModelFlash, DeepReasoning: true},
		},
		{
			name: "web grounding clears deep reasoning",
			req:  dto.UpdateSettingsRequest{WebGrounding: ptr(true)},
			want: ideation.Settings{Temperature: 0.7, Model: ideation.ModelFlash, WebGrounding: true},
		},
		{
			name: "model and temperature",
			req:  dto.UpdateSettingsRequest{Model: ptr("pro"), Temperature: ptr(0.2)},
			want: ideation.Settings{Temperature: 0.2, Model: ideation.ModelPro, WebGrounding: true},
		},
		{
			name: "both flags off",
			req:  dto.UpdateSettingsRequest{DeepReasoning: ptr(false), WebGrounding: ptr(false)},
			want: ideation.Settings{Temperature: 0.2, Model: ideation.ModelPro},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Update(ctx, h.ws, &tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			stored, found, err := h.store.LoadSettings(ctx, h.ws)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, tt.want, stored)
		})
	}
}

func TestSettingsRejectsBothCapabilities(t *testing.T) {
	h := newHarness(t)
	svc := NewSettingsService(h.registry, NewDomainEvents(nil, h.log), h.log)

	_, err := svc.Update(context.Background(), h.ws, &dto.UpdateSettingsRequest{
		DeepReasoning: ptr(true),
		WebGrounding:  ptr(true),
	})
	var verr *ideation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "deepReasoning")
}

func TestSettingsReachTheProvider(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "ok")
	svc := NewSettingsService(h.registry, NewDomainEvents(nil, h.log), h.log)

	_, err := svc.Update(ctx, h.ws, &dto.UpdateSettingsRequest{DeepReasoning: ptr(true)})
	require.NoError(t, err)
	_, err = h.session.UpdateStepInput(ctx, h.ws, &dto.UpdateStepInputRequest{Index: 0, Text: longInput})
	require.NoError(t, err)
	_, err = h.session.RequestHelp(ctx, h.ws, 0)
	require.NoError(t, err)
	h.wait()

	opts := h.provider.LastOptions()
	require.NotNil(t, opts)
	assert.Equal(t, ideation.ModelPro.ID(), opts.Model)
	assert.Positive(t, opts.ThinkingBudget)
	assert.False(t, opts.WebGrounding)
}
