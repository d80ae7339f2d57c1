package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/revgraph/pkg/lanes"
	"github.com/matzehuels/revgraph/pkg/render/nodelink"
	"github.com/matzehuels/revgraph/pkg/revision"
)

func ExampleToDOT() {
	revs := []revision.Revision{
		revision.New("b", "a"),
		revision.New("a"),
	}
	layouts, _ := lanes.Compute(revs)

	dot := nodelink.ToDOT(revs, layouts, nodelink.Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "->") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "b" -> "a" [color="#e06c75"];
}
