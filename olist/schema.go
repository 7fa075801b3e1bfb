// Package olist declares the Brazilian e-commerce benchmark dataset: nine
// relational tables, their CSV sources, and the row cleaning rules that
// turn raw CSV fields into typed values.
package olist

import (
	"github.com/yilin0518/Advanced-DB/store"
)

// Table names.
const (
	TCustomers           = "customers"
	TGeolocation         = "geolocation"
	TOrders              = "orders"
	TOrderItems          = "order_items"
	TOrderPayments       = "order_payments"
	TOrderReviews        = "order_reviews"
	TProducts            = "products"
	TSellers             = "sellers"
	TCategoryTranslation = "category_translation"
)

// SourceFiles maps each table to its CSV file name inside the dataset
// directory.
var SourceFiles = map[string]string{
	TCustomers:           "olist_customers_dataset.csv",
	TGeolocation:         "olist_geolocation_dataset.csv",
	TOrders:              "olist_orders_dataset.csv",
	TOrderItems:          "olist_order_items_dataset.csv",
	TOrderPayments:       "olist_order_payments_dataset.csv",
	TOrderReviews:        "olist_order_reviews_dataset.csv",
	TProducts:            "olist_products_dataset.csv",
	TSellers:             "olist_sellers_dataset.csv",
	TCategoryTranslation: "product_category_name_translation.csv",
}

// LoadOrder lists every table so that each table appears after all tables
// it references.
var LoadOrder = []string{
	TCustomers,
	TGeolocation,
	TProducts,
	TSellers,
	TCategoryTranslation,
	TOrders,
	TOrderItems,
	TOrderPayments,
	TOrderReviews,
}

var tables = []store.TableSpec{
	{
		Name: TCustomers,
		Columns: []store.Column{
			{Name: "customer_id", Type: store.TypeString, Size: 32},
			{Name: "customer_unique_id", Type: store.TypeString, Size: 32},
			{Name: "customer_zip_code_prefix", Type: store.TypeString, Size: 10},
			{Name: "customer_city", Type: store.TypeString, Size: 100},
			{Name: "customer_state", Type: store.TypeString, Size: 5},
		},
		PrimaryKey: []string{"customer_id"},
	},
	{
		Name: TGeolocation,
		Columns: []store.Column{
			{Name: "geolocation_zip_code_prefix", Type: store.TypeString, Size: 10},
			{Name: "geolocation_lat", Type: store.TypeDecimal},
			{Name: "geolocation_lng", Type: store.TypeDecimal},
			{Name: "geolocation_city", Type: store.TypeString, Size: 100},
			{Name: "geolocation_state", Type: store.TypeString, Size: 5},
		},
	},
	{
		Name: TOrders,
		Columns: []store.Column{
			{Name: "order_id", Type: store.TypeString, Size: 32},
			{Name: "customer_id", Type: store.TypeString, Size: 32},
			{Name: "order_status", Type: store.TypeString, Size: 50},
			{Name: "order_purchase_timestamp", Type: store.TypeTimestamp},
			{Name: "order_approved_at", Type: store.TypeTimestamp},
			{Name: "order_delivered_carrier_date", Type: store.TypeTimestamp},
			{Name: "order_delivered_customer_date", Type: store.TypeTimestamp},
			{Name: "order_estimated_delivery_date", Type: store.TypeTimestamp},
		},
		PrimaryKey: []string{"order_id"},
		ForeignKeys: []store.ForeignKey{
			{Column: "customer_id", RefTable: TCustomers, RefColumn: "customer_id"},
		},
	},
	{
		Name: TOrderItems,
		Columns: []store.Column{
			{Name: "order_id", Type: store.TypeString, Size: 32},
			{Name: "order_item_id", Type: store.TypeInteger},
			{Name: "product_id", Type: store.TypeString, Size: 32},
			{Name: "seller_id", Type: store.TypeString, Size: 32},
			{Name: "shipping_limit_date", Type: store.TypeTimestamp},
			{Name: "price", Type: store.TypeDecimal},
			{Name: "freight_value", Type: store.TypeDecimal},
		},
		PrimaryKey: []string{"order_id", "order_item_id"},
		ForeignKeys: []store.ForeignKey{
			{Column: "order_id", RefTable: TOrders, RefColumn: "order_id"},
			{Column: "product_id", RefTable: TProducts, RefColumn: "product_id"},
			{Column: "seller_id", RefTable: TSellers, RefColumn: "seller_id"},
		},
	},
	{
		Name: TOrderPayments,
		Columns: []store.Column{
			{Name: "order_id", Type: store.TypeString, Size: 32},
			{Name: "payment_sequential", Type: store.TypeInteger},
			{Name: "payment_type", Type: store.TypeString, Size: 50},
			{Name: "payment_installments", Type: store.TypeInteger},
			{Name: "payment_value", Type: store.TypeDecimal},
		},
		PrimaryKey: []string{"order_id", "payment_sequential"},
		ForeignKeys: []store.ForeignKey{
			{Column: "order_id", RefTable: TOrders, RefColumn: "order_id"},
		},
	},
	{
		Name: TOrderReviews,
		Columns: []store.Column{
			{Name: "review_id", Type: store.TypeString, Size: 32},
			{Name: "order_id", Type: store.TypeString, Size: 32},
			{Name: "review_score", Type: store.TypeInteger},
			{Name: "review_comment_title", Type: store.TypeString, Size: 255},
			{Name: "review_comment_message", Type: store.TypeText},
			{Name: "review_creation_date", Type: store.TypeTimestamp},
			{Name: "review_answer_timestamp", Type: store.TypeTimestamp},
		},
		// review_id alone repeats in the published data.
		PrimaryKey: []string{"review_id", "order_id"},
		ForeignKeys: []store.ForeignKey{
			{Column: "order_id", RefTable: TOrders, RefColumn: "order_id"},
		},
	},
	{
		Name: TProducts,
		Columns: []store.Column{
			{Name: "product_id", Type: store.TypeString, Size: 32},
			// The misspelled "lenght" headers are the dataset's own.
			{Name: "product_category_name", Type: store.TypeString, Size: 100},
			{Name: "product_name_lenght", Type: store.TypeInteger},
			{Name: "product_description_lenght", Type: store.TypeInteger},
			{Name: "product_photos_qty", Type: store.TypeInteger},
			{Name: "product_weight_g", Type: store.TypeInteger},
			{Name: "product_length_cm", Type: store.TypeInteger},
			{Name: "product_height_cm", Type: store.TypeInteger},
			{Name: "product_width_cm", Type: store.TypeInteger},
		},
		PrimaryKey: []string{"product_id"},
	},
	{
		Name: TSellers,
		Columns: []store.Column{
			{Name: "seller_id", Type: store.TypeString, Size: 32},
			{Name: "seller_zip_code_prefix", Type: store.TypeString, Size: 10},
			{Name: "seller_city", Type: store.TypeString, Size: 100},
			{Name: "seller_state", Type: store.TypeString, Size: 5},
		},
		PrimaryKey: []string{"seller_id"},
	},
	{
		Name: TCategoryTranslation,
		Columns: []store.Column{
			{Name: "product_category_name", Type: store.TypeString, Size: 100},
			{Name: "product_category_name_english", Type: store.TypeString, Size: 100},
		},
		PrimaryKey: []string{"product_category_name"},
	},
}

// Tables returns every table spec in load order.
func Tables() []store.TableSpec {
	out := make([]store.TableSpec, 0, len(tables))
	for _, name := range LoadOrder {
		t, _ := TableByName(name)
		out = append(out, t)
	}
	return out
}

// TableByName returns the spec for name.
func TableByName(name string) (store.TableSpec, bool) {
	for _, t := range tables {
		if t.Name == name {
			return t, true
		}
	}
	return store.TableSpec{}, false
}

// TextColumns returns the set of TEXT-typed column names of a table, used
// for prefix index DDL.
func TextColumns(t store.TableSpec) map[string]bool {
	out := map[string]bool{}
	for _, c := range t.Columns {
		if c.Type == store.TypeText {
			out[c.Name] = true
		}
	}
	return out
}
