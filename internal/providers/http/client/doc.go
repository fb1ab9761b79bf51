// Package client fetches source pages for the rule engine.
//
// A request is described by a spec string: either a bare URL or
// "url,{json}" where the JSON object may carry method, headers and body.
// Responses always come back as UTF-8 text.
//
// Built on go-resty/resty over a hashicorp/go-retryablehttp transport:
//   - Timeout and redirect ceiling per client
//   - Optional retries (off by default)
//   - Outbound rate limiting via golang.org/x/time/rate
//   - One circuit breaker per remote host
//
// Body decoding:
//   - Declared charset or BOM first, then in-document meta tags
//   - saintfish/chardet detection when nothing is declared
//   - gabriel-vasile/mimetype sniffing when Content-Type is missing
//
// Example Usage:
//
//	c := client.NewClient(client.DefaultConfig(), logger)
//	resp, err := c.Fetch(ctx, `https://site/search,{"method":"POST","body":"q=x"}`, headers)
package client
