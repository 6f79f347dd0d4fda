package slug_test

import (
	"testing"

	"github.com/printdesk/printdesk/business/types/slug"
	"github.com/stretchr/testify/require"
)

func Test_Parse(t *testing.T) {
	valid := []string{"print-shop", "posters", "a4-flyers-2"}
	for _, v := range valid {
		s, err := slug.Parse(v)
		require.NoError(t, err)
		require.Equal(t, v, s.String())
	}

	invalid := []string{"", "Print-Shop", "double--hyphen", "-leading", "trailing-", "with space"}
	for _, v := range invalid {
		_, err := slug.Parse(v)
		require.Error(t, err, "expected %q to be rejected", v)
	}
}

func Test_FromName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Business Cards", "business-cards"},
		{"  Gold & Foil!  ", "gold-foil"},
		{"A4 Flyers", "a4-flyers"},
		{"Überdruck", "berdruck"},
	}

	for _, tt := range tests {
		s, err := slug.FromName(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, s.String())
	}
}

func Test_WithSuffix(t *testing.T) {
	s := slug.MustParse("posters")
	require.Equal(t, "posters-2", s.WithSuffix(2).String())
}
