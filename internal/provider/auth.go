package provider

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"kani/internal/httputil"
)

// Authenticate performs the login RPC and captures the credential
// cookies into the client session.
func Authenticate(client *httputil.Client, base, login, password string) error {
	form := url.Values{
		"name":     {login},
		"password": {password},
	}

	res, err := client.Fetch("https://"+base+"/xml/?req=RpcApiUser_Login", &httputil.Options{
		Method:      http.MethodPost,
		Body:        form.Encode(),
		UseProxy:    true,
		SkipCookies: true,
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	sess := client.Session()
	if sess == nil {
		return fmt.Errorf("no session to store credentials in")
	}
	if updated := sess.Refresh(res.Header, true, time.Now()); len(updated) == 0 {
		return fmt.Errorf("authentication failed: no credentials returned")
	}
	return sess.Save()
}
