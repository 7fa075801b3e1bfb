package bench

import (
	"fmt"

	"github.com/pingcap/errors"
	"github.com/yilin0518/Advanced-DB/olist"
	"github.com/yilin0518/Advanced-DB/store"
)

// Kind classifies a scenario by access pattern.
type Kind int

const (
	KindPointLookup Kind = iota
	KindRangeScan
	KindTextSearch
	KindAggregation
	KindJoin
)

var kindNameMap = map[Kind]string{
	KindPointLookup: "point-lookup",
	KindRangeScan:   "range-scan",
	KindTextSearch:  "text-search",
	KindAggregation: "olap-aggregation",
	KindJoin:        "complex-join",
}

func (k Kind) String() string { return kindNameMap[k] }

func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNameMap {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return errors.Errorf("unknown scenario kind=%v", string(text))
}

// Sampler names the column a scenario draws its parameter values from.
type Sampler struct {
	Table  string
	Column string
}

// Scenario is one query of the battery. Build renders the dialect's SQL;
// when Sample is set the SQL carries exactly one placeholder and each
// execution binds a freshly drawn value, otherwise Args (possibly empty)
// are bound as-is.
type Scenario struct {
	Name   string
	Kind   Kind
	Tables []string
	Sample *Sampler
	Args   []interface{}
	Build  func(d store.Dialect) string
}

// Runnable reports whether every table the scenario touches is present.
func (s Scenario) Runnable(have map[string]bool) bool {
	for _, t := range s.Tables {
		if !have[t] {
			return false
		}
	}
	return true
}

// Battery returns the fixed nine-query workload: two point lookups, two
// range scans, one text search, two aggregations, two joins.
func Battery() []Scenario {
	return []Scenario{
		{
			Name:   "orders-by-customer",
			Kind:   KindPointLookup,
			Tables: []string{olist.TOrders},
			Sample: &Sampler{Table: olist.TOrders, Column: "customer_id"},
			Build: func(d store.Dialect) string {
				return fmt.Sprintf("SELECT * FROM orders WHERE customer_id = %v", d.Placeholder(1))
			},
		},
		{
			Name:   "product-by-id",
			Kind:   KindPointLookup,
			Tables: []string{olist.TProducts},
			Sample: &Sampler{Table: olist.TProducts, Column: "product_id"},
			Build: func(d store.Dialect) string {
				return fmt.Sprintf("SELECT * FROM products WHERE product_id = %v", d.Placeholder(1))
			},
		},
		{
			Name:   "orders-by-date",
			Kind:   KindRangeScan,
			Tables: []string{olist.TOrders},
			Build: func(d store.Dialect) string {
				return "SELECT * FROM orders WHERE order_purchase_timestamp" +
					" BETWEEN '2018-01-01 00:00:00' AND '2018-01-31 23:59:59'"
			},
		},
		{
			Name:   "items-by-price",
			Kind:   KindRangeScan,
			Tables: []string{olist.TOrderItems},
			Build: func(d store.Dialect) string {
				pfx, sfx := d.Limit(1000)
				return fmt.Sprintf("SELECT %v* FROM order_items WHERE price BETWEEN 500 AND 1000%v", pfx, sfx)
			},
		},
		{
			Name:   "review-keyword",
			Kind:   KindTextSearch,
			Tables: []string{olist.TOrderReviews},
			Args:   []interface{}{"%estão%"},
			Build: func(d store.Dialect) string {
				pfx, sfx := d.Limit(100)
				return fmt.Sprintf("SELECT %v* FROM order_reviews WHERE review_comment_message LIKE %v%v",
					pfx, d.Placeholder(1), sfx)
			},
		},
		{
			Name:   "top-cities",
			Kind:   KindAggregation,
			Tables: []string{olist.TCustomers},
			Build: func(d store.Dialect) string {
				pfx, sfx := d.Limit(10)
				return fmt.Sprintf("SELECT %vcustomer_city, COUNT(*) AS order_count FROM customers"+
					" GROUP BY customer_city ORDER BY order_count DESC%v", pfx, sfx)
			},
		},
		{
			Name:   "monthly-sales",
			Kind:   KindAggregation,
			Tables: []string{olist.TOrders},
			Build: func(d store.Dialect) string {
				expr := d.MonthExpr("order_purchase_timestamp")
				return fmt.Sprintf("SELECT %v AS order_month, COUNT(*) AS order_count FROM orders"+
					" GROUP BY %v ORDER BY %v", expr, expr, expr)
			},
		},
		{
			Name:   "category-sales",
			Kind:   KindJoin,
			Tables: []string{olist.TOrderItems, olist.TProducts},
			Build: func(d store.Dialect) string {
				pfx, sfx := d.Limit(10)
				return fmt.Sprintf("SELECT %vp.product_category_name, SUM(oi.price) AS total_sales"+
					" FROM order_items oi JOIN products p ON oi.product_id = p.product_id"+
					" GROUP BY p.product_category_name ORDER BY total_sales DESC%v", pfx, sfx)
			},
		},
		{
			Name:   "customer-history",
			Kind:   KindJoin,
			Tables: []string{olist.TCustomers, olist.TOrders, olist.TOrderItems, olist.TProducts},
			Sample: &Sampler{Table: olist.TCustomers, Column: "customer_id"},
			Build: func(d store.Dialect) string {
				return fmt.Sprintf("SELECT c.customer_id, o.order_purchase_timestamp,"+
					" p.product_category_name, oi.price"+
					" FROM customers c"+
					" JOIN orders o ON c.customer_id = o.customer_id"+
					" JOIN order_items oi ON o.order_id = oi.order_id"+
					" JOIN products p ON oi.product_id = p.product_id"+
					" WHERE c.customer_id = %v", d.Placeholder(1))
			},
		},
	}
}

// SelectScenarios returns the battery subset matching names and kinds,
// in battery order. An empty names or kinds places no restriction on
// that axis, so SelectScenarios(nil, nil) is the whole battery.
func SelectScenarios(names []string, kinds []Kind) []Scenario {
	wantName := map[string]bool{}
	for _, n := range names {
		wantName[n] = true
	}
	wantKind := map[Kind]bool{}
	for _, k := range kinds {
		wantKind[k] = true
	}
	out := make([]Scenario, 0, len(names))
	for _, s := range Battery() {
		if len(wantName) > 0 && !wantName[s.Name] {
			continue
		}
		if len(wantKind) > 0 && !wantKind[s.Kind] {
			continue
		}
		out = append(out, s)
	}
	return out
}
