package stats

import "sort"

// PieceBuckets 每局放置方塊數的分桶
type PieceBuckets struct {
	bounds []int
	labels []string
}

// Buckets
//
// 區間: [0,10), [10,20), [20,50), [50,100), [100,200), [200,500), [500,1000), [1000,+inf)
//
// 請勿修改預設值；跨版本報表需可比對。
var Buckets = &PieceBuckets{
	bounds: []int{10, 20, 50, 100, 200, 500, 1000},
	labels: []string{"[0,10)", "[10,20)", "[20,50)", "[50,100)", "[100,200)", "[200,500)", "[500,1000)", "[1000,+inf)"},
}

func (b *PieceBuckets) Labels() []string {
	return append([]string(nil), b.labels...)
}

func (b *PieceBuckets) Len() int {
	return len(b.labels)
}

// Index 回傳 pieces 所屬桶位；負值歸入第一桶
func (b *PieceBuckets) Index(pieces int) int {
	return sort.SearchInts(b.bounds, pieces+1)
}
