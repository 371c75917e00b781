package menu

// Category groups menu items for display.
type Category struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

// Catalog is the normalised, read-only menu.
type Catalog struct {
	Categories []Category `json:"categories"`
	index      map[ItemID]MenuItem
}

// NewCatalog indexes categories by item id. When an id repeats, the first occurrence wins.
func NewCatalog(categories []Category) *Catalog {
	c := &Catalog{
		Categories: categories,
		index:      make(map[ItemID]MenuItem),
	}
	for _, cat := range categories {
		for _, item := range cat.Items {
			if _, exists := c.index[item.ID]; !exists {
				c.index[item.ID] = item
			}
		}
	}
	return c
}

// EmptyCatalog is what the service renders when the menu could not be loaded.
func EmptyCatalog() *Catalog {
	return NewCatalog(nil)
}

// Item looks up a menu item by id.
func (c *Catalog) Item(id ItemID) (MenuItem, bool) {
	if c == nil {
		return MenuItem{}, false
	}
	item, ok := c.index[id]
	return item, ok
}

// Items returns every item in category order.
func (c *Catalog) Items() []MenuItem {
	if c == nil {
		return nil
	}
	var items []MenuItem
	seen := make(map[ItemID]bool)
	for _, cat := range c.Categories {
		for _, item := range cat.Items {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			items = append(items, item)
		}
	}
	return items
}

// Len returns the number of distinct items.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.index)
}
