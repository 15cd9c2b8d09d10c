package service

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestTruncateKeepsRunesWhole(t *testing.T) {
	// "Резюме" занимает по 2 байта на букву
	require.Equal(t, "Р", truncate("Резюме", 3))
	require.Equal(t, "Ре", truncate("Резюме", 4))
	require.Equal(t, "", truncate("Ж", 1))
	require.Equal(t, "abc", truncate("abc", 10))
}

func TestDetailIsValidUTF8(t *testing.T) {
	body := `{"description":"` + strings.Repeat("ошибка ", 100) + `"}`
	err := &APIError{StatusCode: http.StatusBadRequest, Action: "publish resume", Body: body}

	detail := err.Detail()
	require.True(t, utf8.ValidString(detail))

	encoded, marshalErr := json.Marshal(map[string]string{"error": detail})
	require.NoError(t, marshalErr)
	require.NotContains(t, string(encoded), `\ufffd`)
}
