package docs

import (
	"strings"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatal("swagger info not initialized")
	}
	if SwaggerInfo.Title == "" {
		t.Fatal("swagger info missing title")
	}
}

func TestSwaggerDocListsRoutes(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	for _, path := range []string{"/health", "/api/wallets", "/api/check", "/api/valuation/{address}"} {
		if !strings.Contains(doc, `"`+path+`"`) {
			t.Fatalf("expected %s in swagger doc", path)
		}
	}
}
