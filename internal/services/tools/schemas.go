package tools

// JSON-schema parameter definitions handed to the assistant at create time.
// Kept as plain maps so the shapes mirror what goes over the wire.

// EmptySchema is for tools taking no arguments.
var EmptySchema = map[string]interface{}{
	"type":       "object",
	"properties": map[string]interface{}{},
}

// RestaurantInformationSchema defines the get_restaurant_information arguments.
var RestaurantInformationSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"query": map[string]interface{}{
			"type":        "string",
			"description": "Which detail to return. Defaults to all_info.",
			"enum": []string{
				"name", "phone_number", "email", "website", "address",
				"location", "opening_hours", "contact_info", "all_info",
			},
		},
	},
}

// MenuItemsSchema defines the get_menu_items arguments.
var MenuItemsSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"category": map[string]interface{}{
			"type":        "string",
			"description": "Menu category, e.g. starters, mains, desserts, drinks.",
		},
		"classification": map[string]interface{}{
			"type":        "string",
			"description": "Dietary classification of the items.",
			"enum":        []string{"MEAT", "FISH", "VEGETARIAN", "VEGAN"},
		},
	},
	"required": []string{"category", "classification"},
}

// AvailableTablesSchema defines the get_available_tables arguments.
var AvailableTablesSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"date": map[string]interface{}{
			"type":        "string",
			"description": "Reservation date, YYYY-MM-DD.",
		},
		"time": map[string]interface{}{
			"type":        "string",
			"description": "Reservation time, HH:MM, 24h. Optional.",
		},
		"guests": map[string]interface{}{
			"type":        "integer",
			"description": "Number of guests.",
		},
	},
	"required": []string{"date", "guests"},
}

// BookTableSchema defines the book_table arguments.
var BookTableSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name": map[string]interface{}{
			"type":        "string",
			"description": "Name the reservation is held under.",
		},
		"date": map[string]interface{}{
			"type":        "string",
			"description": "Reservation date, YYYY-MM-DD.",
		},
		"time": map[string]interface{}{
			"type":        "string",
			"description": "Reservation time, HH:MM, 24h.",
		},
		"guests": map[string]interface{}{
			"type":        "integer",
			"description": "Number of guests.",
		},
		"phone": map[string]interface{}{
			"type":        "string",
			"description": "Contact phone number. Optional.",
		},
		"reason": map[string]interface{}{
			"type":        "string",
			"description": "Occasion of the visit, e.g. birthday, anniversary. Optional.",
		},
		"reason_date": map[string]interface{}{
			"type":        "string",
			"description": "Date of the occasion, YYYY-MM-DD. Disambiguates birthday vs anniversary. Optional.",
		},
		"promo_code": map[string]interface{}{
			"type":        "string",
			"description": "Promo code the customer wants to redeem. Optional.",
		},
		"preferences": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Dining preferences to remember. Optional.",
		},
		"allergens": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Allergens to remember. Optional.",
		},
		"date_of_birth": map[string]interface{}{
			"type":        "string",
			"description": "Customer's date of birth, YYYY-MM-DD. Optional.",
		},
		"anniversary_date": map[string]interface{}{
			"type":        "string",
			"description": "Customer's anniversary date, YYYY-MM-DD. Optional.",
		},
		"special_notes": map[string]interface{}{
			"type":        "string",
			"description": "Special requests for this reservation. Optional.",
		},
	},
	"required": []string{"name", "date", "time", "guests"},
}

// AddMenuToReservationSchema defines the add_menu_to_reservation arguments.
var AddMenuToReservationSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"reservation_uid": map[string]interface{}{
			"type":        "string",
			"description": "The reservation id returned by book_table.",
		},
		"items": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"menu_name": map[string]interface{}{
						"type":        "string",
						"description": "Name of the menu item, as shown on the menu.",
					},
				},
				"required": []string{"menu_name"},
			},
		},
	},
	"required": []string{"reservation_uid", "items"},
}

// RescheduleReservationSchema defines the reschedule_reservation arguments.
var RescheduleReservationSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"original_date": map[string]interface{}{
			"type":        "string",
			"description": "Date of the reservation to move, YYYY-MM-DD.",
		},
		"original_time": map[string]interface{}{
			"type":        "string",
			"description": "Time of the reservation to move, HH:MM. Required only when the customer has several reservations that day.",
		},
		"date": map[string]interface{}{
			"type":        "string",
			"description": "New date, YYYY-MM-DD. Defaults to the original date.",
		},
		"time": map[string]interface{}{
			"type":        "string",
			"description": "New time, HH:MM. Defaults to the original time.",
		},
		"guests": map[string]interface{}{
			"type":        "integer",
			"description": "New number of guests. Defaults to the original party size.",
		},
		"name": map[string]interface{}{
			"type":        "string",
			"description": "New reservation name. Defaults to the original name.",
		},
		"phone": map[string]interface{}{
			"type":        "string",
			"description": "New contact phone. Defaults to the original phone.",
		},
	},
	"required": []string{"original_date"},
}

// CancelReservationSchema defines the cancel_reservation arguments.
var CancelReservationSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"reservation_date": map[string]interface{}{
			"type":        "string",
			"description": "Date of the reservation to cancel, YYYY-MM-DD.",
		},
		"reservation_time": map[string]interface{}{
			"type":        "string",
			"description": "Time of the reservation to cancel, HH:MM. Required only when the customer has several reservations that day.",
		},
		"reason": map[string]interface{}{
			"type":        "string",
			"description": "Why the customer cancels.",
		},
	},
	"required": []string{"reservation_date", "reason"},
}

// CustomerReservationsSchema defines the get_customer_reservations arguments.
var CustomerReservationsSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"reservation_date": map[string]interface{}{
			"type":        "string",
			"description": "Date to look up, YYYY-MM-DD.",
		},
		"reservation_status": map[string]interface{}{
			"type":        "string",
			"description": "Status to filter by.",
			"enum": []string{
				"PLACED", "INPROGRESS", "COMPLETED", "RESCHEDULED", "CANCELLED", "ABSENT",
			},
		},
	},
	"required": []string{"reservation_date", "reservation_status"},
}

// RecommendationsSchema defines the get_personalized_recommendations arguments.
var RecommendationsSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"limit": map[string]interface{}{
			"type":        "integer",
			"description": "Maximum number of recommendations. Defaults to 5.",
		},
	},
}

// ProfileUpdateSchema defines the client_profile_update arguments.
var ProfileUpdateSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"preferences": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Dining preferences. Overwrites the stored list.",
		},
		"allergens": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Allergens. Overwrites the stored list.",
		},
		"date_of_birth": map[string]interface{}{
			"type":        "string",
			"description": "Date of birth, YYYY-MM-DD.",
		},
		"anniversary_date": map[string]interface{}{
			"type":        "string",
			"description": "Anniversary date, YYYY-MM-DD.",
		},
	},
}
