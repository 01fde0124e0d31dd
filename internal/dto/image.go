package dto

type UploadImage struct {
	OwnerID     string
	Filename    string
	Data        []byte
	Tags        []string
	Description string
}

type ListFilter struct {
	OwnerID  string
	Tag      string
	DateFrom string
	DateTo   string
	Limit    int // 0 means the configured default
}

// TimestampRange bounds upload_timestamp inclusively; empty sides are open.
type TimestampRange struct {
	From string
	To   string
}

func (r TimestampRange) Contains(ts string) bool {
	if r.From != "" && ts < r.From {
		return false
	}
	if r.To != "" && ts > r.To {
		return false
	}

	return true
}
