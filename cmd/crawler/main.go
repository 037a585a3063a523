// Command crawler runs a depth-bounded breadth-first crawl from one or more
// seed URLs and hands every fetched page to the configured result sinks.
//
// Usage:
//
//	crawler https://example.com
//	crawler --depth 3 --output-file pages.jsonl https://a.example https://b.example
//	crawler --seeds-file seeds.txt
//
// Settings come from a .env file, the environment and flags, in increasing
// order of precedence. See --help for the flag list.
package main

func main() {
	Execute()
}
