package csrf

// DoubleSubmitStrategy requires the same random token in a cookie and in
// the request body. The web layer sets the cookie; see Protect.
//
// The submitted side is the explicit token, else the form field, else the
// primary header, else the alternate header. A header therefore stands in
// for the form whenever the form field is empty, even when the cookie is
// present, so header-plus-cookie clients validate. A header with no cookie
// still fails with "Cookie token missing".
//
// The token embeds no timestamp, so the reported age is always 0 and expiry
// is left to the cookie's Max-Age.
type DoubleSubmitStrategy struct{}

func (DoubleSubmitStrategy) Name() string { return StrategyDoubleSubmit }

func (s DoubleSubmitStrategy) Generate(_ Request, p *Protector) (string, TokenMetadata, error) {
	tok, err := newToken(defaultTokenBytes)
	if err != nil {
		return "", TokenMetadata{}, err
	}
	now := p.Now()
	return tok, TokenMetadata{
		Strategy:  s.Name(),
		CreatedAt: now,
		ExpiresAt: now.Add(p.TokenLifetime()),
	}, nil
}

func (s DoubleSubmitStrategy) Validate(req Request, token string, p *Protector) (float64, map[string]any, *Error) {
	cfg := p.cfg

	submitted := token
	if submitted == "" {
		submitted = req.Form(cfg.FormField)
	}
	if submitted == "" {
		submitted = req.Header(cfg.HeaderName)
	}
	if submitted == "" {
		submitted = req.Header(cfg.AltHeaderName)
	}
	cookie := req.Cookie(cfg.CookieName)

	switch {
	case submitted == "" && cookie == "":
		return 0, nil, ErrMissingToken
	case submitted != "" && cookie != "" && !constantTimeEqual(submitted, cookie):
		return 0, nil, errorf(CodeTokenMismatch, "Double-submit mismatch")
	case submitted == "":
		return 0, nil, errorf(CodeTokenMismatch, "Form token missing")
	case cookie == "":
		return 0, nil, errorf(CodeTokenMismatch, "Cookie token missing")
	}
	return 0, map[string]any{"strategy": s.Name()}, nil
}

// CurrentToken returns the cookie token the client already holds.
func (DoubleSubmitStrategy) CurrentToken(req Request, p *Protector) (string, bool) {
	c := req.Cookie(p.cfg.CookieName)
	// short values are replaced with a fresh token
	if len(c) < 16 {
		return "", false
	}
	return c, true
}
