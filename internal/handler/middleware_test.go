package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAPIKeyAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		key     string
		headers map[string]string
		want    int
	}{
		{name: "disabled", key: "", want: http.StatusOK},
		{name: "missing", key: "secret", want: http.StatusUnauthorized},
		{name: "wrong", key: "secret", headers: map[string]string{"X-API-Key": "nope"}, want: http.StatusForbidden},
		{name: "valid", key: "secret", headers: map[string]string{"X-API-Key": " secret "}, want: http.StatusOK},
		{name: "bearer", key: "secret", headers: map[string]string{"Authorization": "bearer secret"}, want: http.StatusOK},
		{name: "basic scheme ignored", key: "secret", headers: map[string]string{"Authorization": "Basic secret"}, want: http.StatusUnauthorized},
		{name: "header wins over bearer", key: "secret", headers: map[string]string{"X-API-Key": "nope", "Authorization": "Bearer secret"}, want: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/x", APIKeyAuth(tc.key), func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
			if tc.want == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Fatal("expected WWW-Authenticate challenge on 401")
			}
		})
	}
}
