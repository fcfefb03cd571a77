// Package testutil provides a test HTTP server component backed by
// httptest.Server, carrying the same middleware stack as server.New.
//
//	srv := testutil.NewComponent(testutil.WithRoutes(func(r *gin.Engine) {
//	    endpoint.RegisterKV(r.Group("/v1"), commands)
//	}))
//	testutil.T(t).Setup(srv)
//
//	resp, _ := http.Get(srv.BaseURL() + "/v1/keys")
package testutil
