package olist_test

import (
	"errors"
	"testing"
	"time"

	"github.com/yilin0518/Advanced-DB/olist"
)

func TestCleanTimestamps(t *testing.T) {
	orders, _ := olist.TableByName(olist.TOrders)
	c := olist.NewCleaner(orders)
	out, err := c.Clean(2, []string{
		"o1", "c1", "delivered",
		"2018-01-02 03:04:05",
		"2018-01-02T03:04:05",
		"2018-01-03",
		"NaN",
		"",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != "o1" || out[2] != "delivered" {
		t.Fatalf("%v", out)
	}
	want := time.Date(2018, 1, 2, 3, 4, 5, 0, time.UTC)
	if ts, ok := out[3].(time.Time); !ok || !ts.Equal(want) {
		t.Fatalf("%v", out[3])
	}
	if ts, ok := out[4].(time.Time); !ok || !ts.Equal(want) {
		t.Fatalf("%v", out[4])
	}
	if ts, ok := out[5].(time.Time); !ok || !ts.Equal(time.Date(2018, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("%v", out[5])
	}
	if out[6] != nil || out[7] != nil {
		t.Fatalf("%v %v", out[6], out[7])
	}
}

func TestCleanNumbers(t *testing.T) {
	products, _ := olist.TableByName(olist.TProducts)
	c := olist.NewCleaner(products)
	out, err := c.Clean(2, []string{
		"p1", "beleza_saude", "58.0", "598", "4", "225", "16", "10", "14",
	})
	if err != nil {
		t.Fatal(err)
	}
	// "58.0" is an integral float rendering of an integer column
	if out[2] != int64(58) || out[3] != int64(598) {
		t.Fatalf("%v %v", out[2], out[3])
	}

	items, _ := olist.TableByName(olist.TOrderItems)
	out, err = olist.NewCleaner(items).Clean(3, []string{
		"o1", "1", "p1", "s1", "2018-01-05 00:00:00", "129.90", "13.29",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out[1] != int64(1) || out[5] != 129.90 || out[6] != 13.29 {
		t.Fatalf("%v", out)
	}
}

func TestCleanNullMarkers(t *testing.T) {
	translation, _ := olist.TableByName(olist.TCategoryTranslation)
	c := olist.NewCleaner(translation)
	for _, marker := range []string{"", "NaN", "NULL", "None", "na", "  nan  "} {
		out, err := c.Clean(2, []string{marker, "health_beauty"})
		if err != nil {
			t.Fatal(err)
		}
		if out[0] != nil {
			t.Fatalf("%q kept as %v", marker, out[0])
		}
	}
}

func TestCleanMalformedDate(t *testing.T) {
	orders, _ := olist.TableByName(olist.TOrders)
	c := olist.NewCleaner(orders)
	_, err := c.Clean(7, []string{
		"o1", "c1", "delivered", "2018-13-45 99:99:99", "", "", "", "",
	})
	var mde *olist.MalformedDateError
	if !errors.As(err, &mde) {
		t.Fatalf("%T %v", err, err)
	}
	if mde.Table != "orders" || mde.Column != "order_purchase_timestamp" || mde.Line != 7 {
		t.Fatalf("%+v", mde)
	}
}

func TestCleanMalformedValue(t *testing.T) {
	products, _ := olist.TableByName(olist.TProducts)
	c := olist.NewCleaner(products)
	_, err := c.Clean(4, []string{
		"p1", "beleza_saude", "58", "598", "four", "225", "16", "10", "14",
	})
	var mve *olist.MalformedValueError
	if !errors.As(err, &mve) {
		t.Fatalf("%T %v", err, err)
	}
	if mve.Column != "product_photos_qty" || mve.Value != "four" {
		t.Fatalf("%+v", mve)
	}
}

func TestCleanFieldCount(t *testing.T) {
	translation, _ := olist.TableByName(olist.TCategoryTranslation)
	if _, err := olist.NewCleaner(translation).Clean(2, []string{"only-one"}); err == nil {
		t.Fatal("short record accepted")
	}
}
