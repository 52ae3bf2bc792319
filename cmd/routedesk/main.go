// RouteDesk is a self-service configuration change pipeline for nginx
// reverse proxies.
//
// Teams submit upstream and location fragments through the HTTP API.
// Submissions run through a three-stage validation pipeline (syntax,
// policy, team scope), queue as change requests, and a background
// worker turns each accepted request into a pull request against the
// Git repository that holds the authoritative proxy configuration.
//
// Usage:
//
//	# Start the API server and worker with default configuration
//	routedesk run
//
//	# Start with a custom configuration file
//	routedesk run --config /etc/routedesk/config.yaml
//
//	# Validate fragment files offline (for CI)
//	routedesk check --team checkout --upstreams upstream.conf --locations proxy.conf
//
//	# Show version information
//	routedesk version
package main

func main() {
	Execute()
}
