package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/core/domain"
)

func TestParseTemplate(t *testing.T) {
	t.Parallel()

	const hash = "0123456789abcdef"

	tests := []struct {
		template string
		want     string
	}{
		{template: domain.DefaultFilenameTemplate, want: "main.01234567.js"},
		{template: "[name].[contenthash].[ext]", want: "main.0123456789abcdef.js"},
		{template: "js/[name]-[contenthash:1].[ext]", want: "js/main-0.js"},
		{template: "[contenthash:16]", want: "0123456789abcdef"},
		{template: "bundle.js", want: "bundle.js"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			t.Parallel()
			tmpl, err := domain.ParseTemplate(tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tmpl.Execute("main", hash))
			assert.Equal(t, tt.template, tmpl.String())
		})
	}
}

func TestParseTemplate_Invalid(t *testing.T) {
	t.Parallel()

	for _, tmpl := range []string{
		"",
		"[hash].js",
		"[contenthash:0]",
		"[contenthash:17]",
		"[contenthash:x]",
		"[name",
		"name]",
		"[name]].js",
	} {
		t.Run(tmpl, func(t *testing.T) {
			t.Parallel()
			_, err := domain.ParseTemplate(tmpl)
			require.ErrorIs(t, err, domain.ErrInvalidTemplate)
		})
	}
}
