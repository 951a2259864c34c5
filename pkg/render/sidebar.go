package render

import (
	"github.com/Sriram-PR/xmark/pkg/summary"
)

// SidebarItem is one entry of the book-wide table of contents shown next to
// every page. Drafts have no URL.
type SidebarItem struct {
	Name     string
	URL      string
	Number   string // Empty for prefix and suffix chapters
	Active   bool
	Children []SidebarItem
}

// buildSidebar mirrors the summary, linking each chapter through urls
// (input path -> page URL) and marking the entry whose URL is current.
func buildSidebar(s *summary.Summary, urls map[string]string, current string) []SidebarItem {
	item := func(c summary.Chapter, number string) SidebarItem {
		it := SidebarItem{Name: c.Name, Number: number}
		if !c.IsDraft() {
			it.URL = urls[c.Location]
			it.Active = it.URL != "" && it.URL == current
		}
		return it
	}

	var linkItems func(links []summary.Link) []SidebarItem
	linkItems = func(links []summary.Link) []SidebarItem {
		items := make([]SidebarItem, 0, len(links))
		for _, l := range links {
			number := ""
			if l.SectionNumber != nil {
				number = l.SectionNumber.String()
			}
			it := item(l.Chapter, number)
			it.Children = linkItems(l.NestedItems)
			items = append(items, it)
		}
		return items
	}

	var items []SidebarItem
	for _, c := range s.PrefixChapters {
		items = append(items, item(c, ""))
	}
	items = append(items, linkItems(s.NumberedChapters)...)
	for _, c := range s.SuffixChapters {
		items = append(items, item(c, ""))
	}
	return items
}
