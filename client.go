package fastdl

import (
	"github.com/go-resty/resty/v2"
)

// newClient creates the shared resty client used for HEAD and ranged GET
// requests. Unlike the teacher's newClient, this client has no HTTP cache
// (caching a ranged response would be actively wrong — the mmap write path
// wants fresh bytes every time) and no resty-level retry: the chunk task
// owns its own unbounded, observable backoff loop (§4.2), and resty's
// bounded SetRetryCount can't express "retry forever" or the precise
// T0*2^n sequence §8's testable properties require.
func newClient(o Option) *resty.Client {
	client := resty.New()

	if o.Timeout > 0 {
		client.SetTimeout(o.Timeout)
	}

	userAgent := o.UserAgent
	if userAgent == "" {
		userAgent = DefaultOption.UserAgent
	}
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept", "*/*")
	client.SetHeader("Connection", "keep-alive")

	return client
}
