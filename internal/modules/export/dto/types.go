package dto

type ExportInput struct {
	Format string
	// Path wins over Dir. With neither set the rendered bytes are only
	// returned.
	Path string
	Dir  string
}

type ExportOutput struct {
	Format    string
	Path      string
	Data      []byte
	ItemCount int
	AllItems  bool
	Updated   bool
}
