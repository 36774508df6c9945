package cryptox

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, token, 43) // 32 bytes base64url, no padding
	require.True(t, ValidTokenShape(token, TokenSize256))

	other, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, token, other)

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestValidTokenShape(t *testing.T) {
	t.Parallel()

	require.False(t, ValidTokenShape("", TokenSize256))
	require.False(t, ValidTokenShape("too-short", TokenSize256))
	require.False(t, ValidTokenShape("contains spaces and !", TokenSize256))

	token, err := GenerateToken(TokenSize128)
	require.NoError(t, err)
	require.True(t, ValidTokenShape(token, TokenSize128))
	require.False(t, ValidTokenShape(token, TokenSize256))
}

func TestGenerateBase62(t *testing.T) {
	t.Parallel()

	out, err := GenerateBase62(14)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^[0-9A-Za-z]{14}$`), out)

	_, err = GenerateBase62(-1)
	require.Error(t, err)
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	fp := FingerprintToken("some-secret")
	require.Len(t, fp, 43)
	require.Equal(t, fp, FingerprintToken("some-secret"))
	require.NotEqual(t, fp, FingerprintToken("some-secreT"))
}

func TestConstantTimeEqual(t *testing.T) {
	t.Parallel()

	require.True(t, ConstantTimeEqual("abc", "abc"))
	require.False(t, ConstantTimeEqual("abc", "abd"))
	require.False(t, ConstantTimeEqual("abc", "abcd"))
}
