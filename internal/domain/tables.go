package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOprLog{},
	// Stores
	&Store{},
	&Billboard{},
	&Category{},
	&Size{},
	&Color{},
	&Product{},
	&ProductImage{},
	// Orders
	&Order{},
	&OrderItem{},
}
