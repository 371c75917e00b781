package deliverytype

import "strings"

type DeliveryType struct {
	Name  string
	Title string
}

func (d DeliveryType) Code() string {
	return d.Name
}

func (d DeliveryType) Label() string {
	if d.Title != "" {
		return d.Title
	}
	if len(d.Name) == 0 {
		return ""
	}
	return strings.ToUpper(d.Name[:1]) + d.Name[1:]
}

// AddressHint is the placeholder for the address field: a table number when eating in, a street address otherwise.
func (d DeliveryType) AddressHint() string {
	if d.Name == Types.DineIn.Name {
		return "Номер столика (если требуется)"
	}
	return "Укажите адрес"
}

type Enum struct {
	Pickup   DeliveryType
	Delivery DeliveryType
	DineIn   DeliveryType
}

var Types = Enum{
	Pickup:   DeliveryType{Name: "pickup", Title: "Самовывоз"},
	Delivery: DeliveryType{Name: "delivery", Title: "Доставка"},
	DineIn:   DeliveryType{Name: "dine_in", Title: "На месте"},
}

var All = []DeliveryType{
	Types.Pickup,
	Types.Delivery,
	Types.DineIn,
}

// Default is used when nothing was remembered.
var Default = Types.Pickup

// ByName returns the delivery type for a given name, or nil if not found
func ByName(name string) *DeliveryType {
	for _, d := range All {
		if d.Name == name {
			return &d
		}
	}
	return nil
}
