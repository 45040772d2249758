package hashver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"", SHA1, false},
		{"sha1", SHA1, false},
		{"SHA256", SHA256, false},
		{"xxhash64", XXHash64, false},
		{"md5", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeIsFileNameSafe(t *testing.T) {
	// 0xfb 0xff encodes to "+/8=" in standard base64.
	got := Encode([]byte{0xfb, 0xff})
	assert.Equal(t, "-_8", got)
	assert.False(t, strings.ContainsAny(got, "+/="))
}

func TestAlgorithmSizes(t *testing.T) {
	assert.Len(t, SHA1.New().Sum(nil), 20)
	assert.Len(t, SHA256.New().Sum(nil), 32)
	assert.Len(t, XXHash64.New().Sum(nil), 8)
}
