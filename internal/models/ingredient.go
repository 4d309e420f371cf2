package models

// Ingredient is shared reference data; (Name, MeasurementUnit) is unique.
type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit;index" json:"name"`
	MeasurementUnit string `gorm:"size:10;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}
