package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	&SysOprLog{},
	// Catalog
	&Category{},
	&SubCategory{},
	&SubCategoryCategory{},
	&Product{},
	&ProductCategory{},
	&ProductSubCategory{},
}
