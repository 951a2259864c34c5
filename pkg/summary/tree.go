package summary

import (
	"fmt"
	"io"

	"github.com/Sriram-PR/xmark/pkg/utils"
)

// WriteTree prints the table of contents as a text tree headed by the title.
// Numbered chapters carry their section number; drafts are marked.
func (s *Summary) WriteTree(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n", s.Title); err != nil {
		return err
	}
	return utils.WriteTree(w, s.TreeNodes())
}

// TreeNodes converts the summary into printable nodes in document order.
func (s *Summary) TreeNodes() []utils.TreeNode {
	var nodes []utils.TreeNode
	for _, c := range s.PrefixChapters {
		nodes = append(nodes, utils.TreeNode{Label: chapterLabel("", c)})
	}
	nodes = append(nodes, linkNodes(s.NumberedChapters)...)
	for _, c := range s.SuffixChapters {
		nodes = append(nodes, utils.TreeNode{Label: chapterLabel("", c)})
	}
	return nodes
}

func linkNodes(links []Link) []utils.TreeNode {
	nodes := make([]utils.TreeNode, 0, len(links))
	for _, l := range links {
		number := ""
		if l.SectionNumber != nil {
			number = l.SectionNumber.String() + " "
		}
		nodes = append(nodes, utils.TreeNode{
			Label:    chapterLabel(number, l.Chapter),
			Children: linkNodes(l.NestedItems),
		})
	}
	return nodes
}

func chapterLabel(number string, c Chapter) string {
	if c.IsDraft() {
		return number + c.Name + " (draft)"
	}
	return fmt.Sprintf("%s%s [%s]", number, c.Name, c.Location)
}
