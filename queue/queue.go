// Package queue 维护待打印商品队列，并把队列展开为按页分组的标签实例。
package queue

import (
	"sync"

	"github.com/ByLCY/pricelabel/label"
)

// Queue 是并发安全的商品队列。新商品插在最前面，与录入界面一致。
type Queue struct {
	mu       sync.RWMutex
	products []label.Product
}

// New 返回以 products 为初始内容的队列（按给定顺序）。
func New(products ...label.Product) *Queue {
	q := &Queue{}
	q.products = append(q.products, products...)
	return q
}

// Add 将商品插到队首。
func (q *Queue) Add(p label.Product) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.products = append([]label.Product{p}, q.products...)
}

// Remove 按 ID 删除商品，未找到时返回 false。
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, p := range q.products {
		if p.ID == id {
			q.products = append(q.products[:i:i], q.products[i+1:]...)
			return true
		}
	}
	return false
}

// Len 返回商品条目数（不是标签数）。
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.products)
}

// Products 返回当前队列的副本。
func (q *Queue) Products() []label.Product {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]label.Product, len(q.products))
	copy(out, q.products)
	return out
}

// Snapshot 展开当前队列。导出开始时调用一次，之后对队列的修改不影响已生成的分组。
func (q *Queue) Snapshot() []label.PageGroup {
	return Expand(q.Products())
}

// Flatten 按商品顺序把每个商品重复 Quantity 次，数量 <= 0 的商品被忽略。
func Flatten(products []label.Product) []*label.Instance {
	var out []*label.Instance
	for _, p := range products {
		for i := 0; i < p.Quantity; i++ {
			out = append(out, &label.Instance{Product: p, Seq: len(out)})
		}
	}
	return out
}

// Chunk 每两个实例组成一页，末页不足时第二个位置为空。
func Chunk(instances []*label.Instance) []label.PageGroup {
	groups := make([]label.PageGroup, 0, (len(instances)+label.SlotsPerPage-1)/label.SlotsPerPage)
	for i := 0; i < len(instances); i += label.SlotsPerPage {
		var g label.PageGroup
		for j := 0; j < label.SlotsPerPage && i+j < len(instances); j++ {
			g[j] = instances[i+j]
		}
		groups = append(groups, g)
	}
	return groups
}

// Expand = Chunk(Flatten(products))。
func Expand(products []label.Product) []label.PageGroup {
	return Chunk(Flatten(products))
}

// Totals 返回标签总数与页数。
func Totals(products []label.Product) (labels, pages int) {
	for _, p := range products {
		if p.Quantity > 0 {
			labels += p.Quantity
		}
	}
	return labels, (labels + label.SlotsPerPage - 1) / label.SlotsPerPage
}
