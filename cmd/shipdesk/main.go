// Shipdesk is the shipping-instruction form gateway.
//
// It serves the browser form's API: item and list lookups against the
// SharePoint lists through Microsoft Graph, and submissions that are
// rendered to PDF with headless Chrome and emailed to the submitter.
//
// Usage:
//
//	# Start the server
//	shipdesk run --config /etc/shipdesk/config.yaml
//
//	# Render a submission locally
//	shipdesk render --input submission.json --html out.html --pdf out.pdf
//
//	# Print the lists of the configured site
//	shipdesk lists --output json
//
//	# Check a configuration file
//	shipdesk validate --config config.yaml
package main

func main() {
	Execute()
}
