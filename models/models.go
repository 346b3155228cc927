package models

import "strconv"

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Client{},
		&Order{},
		&Invoice{},
		&Vendor{},
		&Material{},
		&Reorder{},
		&ActivityLog{},
	}
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
