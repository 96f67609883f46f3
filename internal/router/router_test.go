package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"customsdesk/internal/handler"
	"customsdesk/internal/router"
	"customsdesk/mocks"
)

func TestSetup_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mocks.MockDeclarationService)
	r := router.Setup(nil, []string{"http://localhost:3000"},
		handler.NewDeclarationHandler(svc, 1<<20, 0),
		handler.NewHealthHandler(nil))

	routes := map[string]bool{}
	for _, ri := range r.Routes() {
		routes[ri.Method+" "+ri.Path] = true
	}
	assert.True(t, routes["GET /healthz"])
	assert.True(t, routes["GET /readyz"])
	assert.True(t, routes["POST /api/v1/declarations"])
	assert.True(t, routes["POST /api/v1/declarations/from-storage"])

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
