package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"cryptoinvest/internal/config"
)

func TestImageExtension(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		wantErr     bool
	}{
		{contentType: "image/png", want: ".png"},
		{contentType: "IMAGE/JPEG", want: ".jpg"},
		{contentType: "image/webp; charset=binary", want: ".webp"},
		{contentType: "application/pdf", wantErr: true},
		{contentType: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, err := ImageExtension(tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvatarKey(t *testing.T) {
	k1 := AvatarKey("u-1", ".png")
	k2 := AvatarKey("u-1", ".png")
	assert.True(t, strings.HasPrefix(k1, "avatars/u-1/"))
	assert.True(t, strings.HasSuffix(k1, ".png"))
	assert.NotEqual(t, k1, k2)
}

func TestNewMinIOValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{name: "endpoint", cfg: config.MinIOConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}, want: "endpoint"},
		{name: "credentials", cfg: config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}, want: "credentials"},
		{name: "bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, want: "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(context.Background(), tt.cfg, nil)
			assert.Nil(t, s)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
