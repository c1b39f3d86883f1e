// Command classifier is a thin demonstration CLI over the
// github.com/corpuskit/classifier library. It is not part of the
// library's stable surface.
package main

import "github.com/corpuskit/classifier/cmd/classifier/cli"

func main() {
	cli.Run()
}
