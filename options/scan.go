package options

type Order string

const (
	Ascend  Order = "ASC"
	Descend Order = "DESC"
)

type ScanOptions struct {
	O     Order
	Px    string
	Limit int
}

func (so *ScanOptions) SetOrder(o Order) *ScanOptions {
	so.O = o
	return so
}

func (so *ScanOptions) Prefix(p string) *ScanOptions {
	so.Px = p
	return so
}

func (so *ScanOptions) SetLimit(n int) *ScanOptions {
	so.Limit = n
	return so
}

func Scan() *ScanOptions {
	return &ScanOptions{O: Ascend}
}
