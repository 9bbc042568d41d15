// Package sample provides built-in demonstration datasets.
package sample

// GroceryItems lists the grocery dataset's columns in collection order.
func GroceryItems() []string {
	return []string{"Eggs", "Milk", "Bread", "Butter", "Cheese", "Diaper", "Beer"}
}

// Groceries returns the eight-transaction grocery indicator matrix. Each
// call returns a fresh copy the caller may modify.
func Groceries() (items []string, rows [][]int) {
	return GroceryItems(), [][]int{
		{1, 1, 0, 1, 0, 1, 0},
		{0, 1, 1, 0, 1, 0, 1},
		{1, 1, 1, 1, 0, 0, 0},
		{1, 0, 1, 0, 1, 1, 0},
		{0, 1, 0, 1, 1, 0, 1},
		{1, 1, 0, 0, 0, 1, 0},
		{0, 0, 1, 1, 1, 1, 1},
		{1, 0, 1, 0, 1, 0, 1},
	}
}

// GroceryBaskets returns the grocery dataset as per-transaction item lists.
func GroceryBaskets() [][]string {
	items, rows := Groceries()
	baskets := make([][]string, len(rows))
	for t, row := range rows {
		basket := []string{}
		for c, v := range row {
			if v == 1 {
				basket = append(basket, items[c])
			}
		}
		baskets[t] = basket
	}
	return baskets
}
