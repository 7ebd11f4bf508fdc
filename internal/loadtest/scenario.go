// Package loadtest runs constant-VU load scenarios against the mesh-exposed
// hello workload and summarizes request latency.
package loadtest

import (
	"strings"
)

// CheckName is the name of the only response check.
const CheckName = "is status 200"

// Scenario is one request issued in a loop by every VU.
type Scenario struct {
	Name   string
	Method string
	URL    string
	Body   string

	// Trend names the latency series of this scenario
	Trend string
}

// Scenarios returns the get and post scenarios for https://hello.<domain>.
func Scenarios(domain string) []Scenario {
	return ScenariosFor("https://hello." + domain)
}

// ScenariosFor returns the get and post scenarios against baseURL.
func ScenariosFor(baseURL string) []Scenario {
	baseURL = strings.TrimRight(baseURL, "/")
	return []Scenario{
		{
			Name:   "get",
			Method: "GET",
			URL:    baseURL + "/headers",
			Trend:  "get_request_duration",
		},
		{
			Name:   "post",
			Method: "POST",
			URL:    baseURL + "/post",
			Body:   `{"x":"y"}`,
			Trend:  "post_request_duration",
		},
	}
}
