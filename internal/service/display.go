package service

import (
	"fmt"
	"io"

	"github.com/amirrezavafa/Digistyle-crawler/internal/domain"
)

// DisplayTree prints the discovered category hierarchy, one indentation
// level per depth, so the operator can review it before confirming.
func DisplayTree(w io.Writer, tree *domain.CategoryTree) {
	fmt.Fprintln(w, "Categories:")

	for _, main := range tree.Mains {
		fmt.Fprintf(w, "- %s:\n", main.Name)

		for _, sub := range main.Subs {
			fmt.Fprintf(w, "  - %s:\n", sub.Name)

			for _, leaf := range sub.Leaves {
				fmt.Fprintf(w, "    - %s (%s)\n", leaf.Name, leaf.URL)
			}
		}
	}

	fmt.Fprintln(w)
}
