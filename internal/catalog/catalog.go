// Package catalog holds the static add-on, event-type and cake tables. The
// data is bundled with the binary and never mutated; prices are integer
// rupees.
package catalog

import "bingen-booking/internal/models"

type AddOn struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
	Image string `json:"image"`
}

type EventType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type CakePrices struct {
	HalfKg int `json:"halfKg"`
	OneKg  int `json:"oneKg"`
}

type Cake struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Image   string     `json:"image"`
	Egg     CakePrices `json:"egg"`
	Eggless CakePrices `json:"eggless"`
}

var addOns = []AddOn{
	{ID: "1", Name: "Rose", Price: 99, Image: "/add-ons/rose.jpg"},
	{ID: "2", Name: "LED HBD", Price: 119, Image: "/add-ons/led-hbd.jpg"},
	{ID: "3", Name: "Fog Entry", Price: 899, Image: "/add-ons/fog-entry.jpg"},
	{ID: "4", Name: "Fog Entry + Cold Fire (2)", Price: 1599, Image: "/add-ons/fog-entry.jpg"},
	{ID: "5", Name: "Fog Entry + Cold Fire (4)", Price: 2299, Image: "/add-ons/fog-entry.jpg"},
	{ID: "6", Name: "Photo Props", Price: 189, Image: "/add-ons/photo-props.jpg"},
	{ID: "7", Name: "Bouquet", Price: 499, Image: "/add-ons/bouquet.jpg"},
	{ID: "8", Name: "LED Name Letters", Price: 299, Image: "/add-ons/led-name-letters.jpg"},
	{ID: "9", Name: "Table Décor", Price: 349, Image: "/add-ons/table-decor.jpg"},
	{ID: "10", Name: "Candles", Price: 199, Image: "/add-ons/candles.jpg"},
	{ID: "11", Name: "Photoshoot (30 mins)", Price: 600, Image: "/add-ons/photoshoot.jpg"},
	{ID: "12", Name: "Photoshoot (60 mins)", Price: 1200, Image: "/add-ons/photoshoot.jpg"},
	{ID: "13", Name: "Sash & Crown", Price: 199, Image: "/add-ons/sash-crown.jpg"},
	{ID: "14", Name: "Cold Fire", Price: 700, Image: "/add-ons/cold-fire.jpg"},
	{ID: "15", Name: "Candle Faith", Price: 199, Image: "/add-ons/candle-faith.jpg"},
	{ID: "16", Name: "Fog Effect", Price: 499, Image: "/add-ons/fog-effect.jpg"},
	{ID: "17", Name: "LOVE", Price: 99, Image: "/add-ons/love.jpg"},
	{ID: "18", Name: "LED Numbers", Price: 99, Image: "/add-ons/led-numbers.jpg"},
}

var eventTypes = []EventType{
	{ID: "1", Name: "Birthday", Icon: "/event-types/birthday.jpg"},
	{ID: "2", Name: "Anniversary", Icon: "/event-types/anniversary.jpg"},
	{ID: "3", Name: "Romantic Date", Icon: "/event-types/romantic-date.jpg"},
	{ID: "4", Name: "Marriage Proposal", Icon: "/event-types/marriage-proposal.jpg"},
	{ID: "5", Name: "Groom to Be", Icon: "/event-types/groom-to-be.jpg"},
	{ID: "6", Name: "Bride to Be", Icon: "/event-types/bride-to-be.jpg"},
	{ID: "7", Name: "Baby Shower", Icon: "/event-types/baby-shower.jpg"},
	{ID: "8", Name: "Private Party", Icon: "/event-types/private-party.jpg"},
}

var cakes = []Cake{
	{ID: "1", Name: "Vanilla", Image: "/cakes/vanilla.jpg",
		Egg: CakePrices{HalfKg: 500, OneKg: 950}, Eggless: CakePrices{HalfKg: 550, OneKg: 1100}},
	{ID: "2", Name: "Strawberry", Image: "/cakes/strawberry.jpg",
		Egg: CakePrices{HalfKg: 500, OneKg: 950}, Eggless: CakePrices{HalfKg: 550, OneKg: 1100}},
	{ID: "3", Name: "Butterscotch", Image: "/cakes/butterscotch.jpg",
		Egg: CakePrices{HalfKg: 500, OneKg: 950}, Eggless: CakePrices{HalfKg: 550, OneKg: 1100}},
	{ID: "4", Name: "Pineapple", Image: "/cakes/pineapple.jpg",
		Egg: CakePrices{HalfKg: 500, OneKg: 950}, Eggless: CakePrices{HalfKg: 550, OneKg: 1100}},
	{ID: "5", Name: "Blueberry", Image: "/cakes/blueberry.jpg",
		Egg: CakePrices{HalfKg: 550, OneKg: 1000}, Eggless: CakePrices{HalfKg: 600, OneKg: 1200}},
	{ID: "6", Name: "Pista Malai", Image: "/cakes/pista-malai.jpg",
		Egg: CakePrices{HalfKg: 550, OneKg: 1000}, Eggless: CakePrices{HalfKg: 600, OneKg: 1200}},
	{ID: "7", Name: "Choco Truffle", Image: "/cakes/choco-truffle.jpg",
		Egg: CakePrices{HalfKg: 600, OneKg: 1100}, Eggless: CakePrices{HalfKg: 650, OneKg: 1300}},
	{ID: "8", Name: "Chocolate Kitkat", Image: "/cakes/chocolate-kitkat.jpg",
		Egg: CakePrices{HalfKg: 600, OneKg: 1100}, Eggless: CakePrices{HalfKg: 650, OneKg: 1300}},
	{ID: "9", Name: "White Forest", Image: "/cakes/white-forest.jpg",
		Egg: CakePrices{HalfKg: 600, OneKg: 1100}, Eggless: CakePrices{HalfKg: 650, OneKg: 1300}},
	{ID: "10", Name: "Black Forest", Image: "/cakes/black-forest.jpg",
		Egg: CakePrices{HalfKg: 600, OneKg: 1100}, Eggless: CakePrices{HalfKg: 650, OneKg: 1300}},
}

// AddOns returns the full add-on table.
func AddOns() []AddOn {
	return addOns
}

// EventTypes returns the full event-type table.
func EventTypes() []EventType {
	return eventTypes
}

// Cakes returns the full cake table.
func Cakes() []Cake {
	return cakes
}

func AddOnByName(name string) (AddOn, bool) {
	for _, a := range addOns {
		if a.Name == name {
			return a, true
		}
	}
	return AddOn{}, false
}

func EventTypeByName(name string) (EventType, bool) {
	for _, e := range eventTypes {
		if e.Name == name {
			return e, true
		}
	}
	return EventType{}, false
}

func CakeByName(name string) (Cake, bool) {
	for _, c := range cakes {
		if c.Name == name {
			return c, true
		}
	}
	return Cake{}, false
}

// CakePrice resolves the unit price for a cake name, egg/eggless type and
// weight. ok is false for an unknown cake or an unknown type/weight pair.
func CakePrice(name string, cakeType models.CakeType, weight models.CakeWeight) (int, bool) {
	cake, found := CakeByName(name)
	if !found {
		return 0, false
	}

	var prices CakePrices
	switch cakeType {
	case models.CakeEgg:
		prices = cake.Egg
	case models.CakeEggless:
		prices = cake.Eggless
	default:
		return 0, false
	}

	switch weight {
	case models.CakeHalfKg:
		return prices.HalfKg, true
	case models.CakeOneKg:
		return prices.OneKg, true
	default:
		return 0, false
	}
}
