package bench_test

import (
	"strings"
	"testing"

	"github.com/yilin0518/Advanced-DB/bench"
	"github.com/yilin0518/Advanced-DB/store"
)

func TestBatteryShape(t *testing.T) {
	battery := bench.Battery()
	if len(battery) != 9 {
		t.Fatal(len(battery))
	}
	counts := map[bench.Kind]int{}
	for _, s := range battery {
		counts[s.Kind]++
		if s.Name == "" || len(s.Tables) == 0 || s.Build == nil {
			t.Fatalf("%+v", s)
		}
	}
	if counts[bench.KindPointLookup] != 2 || counts[bench.KindRangeScan] != 2 ||
		counts[bench.KindTextSearch] != 1 || counts[bench.KindAggregation] != 2 ||
		counts[bench.KindJoin] != 2 {
		t.Fatalf("%v", counts)
	}
}

func TestBatterySQLDialects(t *testing.T) {
	byName := map[string]bench.Scenario{}
	for _, s := range bench.Battery() {
		byName[s.Name] = s
	}
	mysql, err := store.Lookup("mysql")
	if err != nil {
		t.Fatal(err)
	}
	postgres, err := store.Lookup("postgres")
	if err != nil {
		t.Fatal(err)
	}
	mssql, err := store.Lookup("mssql")
	if err != nil {
		t.Fatal(err)
	}
	sqlite, err := store.Lookup("sqlite")
	if err != nil {
		t.Fatal(err)
	}

	if sql := byName["orders-by-customer"].Build(mysql); !strings.HasSuffix(sql, "customer_id = ?") {
		t.Fatal(sql)
	}
	if sql := byName["orders-by-customer"].Build(postgres); !strings.HasSuffix(sql, "customer_id = $1") {
		t.Fatal(sql)
	}
	if sql := byName["review-keyword"].Build(mssql); !strings.Contains(sql, "LIKE @p1") {
		t.Fatal(sql)
	}

	// row caps render as a trailing LIMIT or a TOP right after SELECT
	if sql := byName["items-by-price"].Build(mysql); !strings.HasSuffix(sql, " LIMIT 1000") {
		t.Fatal(sql)
	}
	if sql := byName["items-by-price"].Build(mssql); !strings.HasPrefix(sql, "SELECT TOP (1000) ") {
		t.Fatal(sql)
	}
	if sql := byName["items-by-price"].Build(mssql); strings.Contains(sql, "LIMIT") {
		t.Fatal(sql)
	}

	if sql := byName["monthly-sales"].Build(mysql); !strings.Contains(sql, "DATE_FORMAT(order_purchase_timestamp, '%Y-%m')") {
		t.Fatal(sql)
	}
	if sql := byName["monthly-sales"].Build(sqlite); !strings.Contains(sql, "strftime('%Y-%m', order_purchase_timestamp)") {
		t.Fatal(sql)
	}
	// month bucket repeats in GROUP BY so the statement stays portable
	if sql := byName["monthly-sales"].Build(postgres); strings.Count(sql, "to_char(order_purchase_timestamp, 'YYYY-MM')") != 3 {
		t.Fatal(sql)
	}
}

func TestSelectScenarios(t *testing.T) {
	if got := bench.SelectScenarios(nil, nil); len(got) != 9 {
		t.Fatal(len(got))
	}
	got := bench.SelectScenarios([]string{"top-cities", "orders-by-customer"}, nil)
	if len(got) != 2 {
		t.Fatal(len(got))
	}
	// battery order wins over request order
	if got[0].Name != "orders-by-customer" || got[1].Name != "top-cities" {
		t.Fatalf("%v %v", got[0].Name, got[1].Name)
	}
	got = bench.SelectScenarios(nil, []bench.Kind{bench.KindJoin})
	if len(got) != 2 || got[0].Name != "category-sales" || got[1].Name != "customer-history" {
		t.Fatalf("%v", got)
	}
	// names and kinds intersect
	got = bench.SelectScenarios([]string{"top-cities", "customer-history"}, []bench.Kind{bench.KindJoin})
	if len(got) != 1 || got[0].Name != "customer-history" {
		t.Fatalf("%v", got)
	}
}

func TestRunnable(t *testing.T) {
	byName := map[string]bench.Scenario{}
	for _, s := range bench.Battery() {
		byName[s.Name] = s
	}
	have := map[string]bool{"orders": true, "customers": true}
	if !byName["orders-by-customer"].Runnable(have) {
		t.Fatal()
	}
	if byName["review-keyword"].Runnable(have) {
		t.Fatal()
	}
	if byName["customer-history"].Runnable(have) {
		t.Fatal()
	}
}

func TestKindText(t *testing.T) {
	names := []string{"point-lookup", "range-scan", "text-search", "olap-aggregation", "complex-join"}
	for _, name := range names {
		var k bench.Kind
		if err := k.UnmarshalText([]byte(name)); err != nil {
			t.Fatal(err)
		}
		if k.String() != name {
			t.Fatalf("%v != %v", k.String(), name)
		}
	}
	var k bench.Kind
	if err := k.UnmarshalText([]byte("table-scan")); err == nil {
		t.Fatal("unknown kind accepted")
	}
}
