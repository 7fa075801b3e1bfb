package olist_test

import (
	"testing"

	"github.com/yilin0518/Advanced-DB/olist"
)

func TestLoadOrderClosure(t *testing.T) {
	pos := map[string]int{}
	for i, name := range olist.LoadOrder {
		if _, seen := pos[name]; seen {
			t.Fatalf("%v listed twice", name)
		}
		pos[name] = i
	}
	if len(olist.LoadOrder) != len(olist.Tables()) {
		t.Fatal(len(olist.LoadOrder))
	}
	// every reference points at an earlier table
	for _, tab := range olist.Tables() {
		for _, fk := range tab.ForeignKeys {
			j, ok := pos[fk.RefTable]
			if !ok {
				t.Fatalf("%v references unknown table %v", tab.Name, fk.RefTable)
			}
			if j >= pos[tab.Name] {
				t.Fatalf("%v loads before its parent %v", tab.Name, fk.RefTable)
			}
			ref, _ := olist.TableByName(fk.RefTable)
			if _, ok := ref.Column(fk.RefColumn); !ok {
				t.Fatalf("%v references missing column %v.%v", tab.Name, fk.RefTable, fk.RefColumn)
			}
		}
	}
}

func TestSourceFiles(t *testing.T) {
	for _, name := range olist.LoadOrder {
		if olist.SourceFiles[name] == "" {
			t.Fatalf("no source file for %v", name)
		}
		if _, ok := olist.TableByName(name); !ok {
			t.Fatalf("no spec for %v", name)
		}
	}
	if _, ok := olist.TableByName("invoices"); ok {
		t.Fatal()
	}
}

func TestPrimaryKeyColumnsExist(t *testing.T) {
	for _, tab := range olist.Tables() {
		for _, pk := range tab.PrimaryKey {
			if _, ok := tab.Column(pk); !ok {
				t.Fatalf("%v: primary key column %v not declared", tab.Name, pk)
			}
		}
	}
}

func TestTextColumns(t *testing.T) {
	reviews, ok := olist.TableByName(olist.TOrderReviews)
	if !ok {
		t.Fatal()
	}
	text := olist.TextColumns(reviews)
	if len(text) != 1 || !text["review_comment_message"] {
		t.Fatalf("%v", text)
	}
	orders, _ := olist.TableByName(olist.TOrders)
	if len(olist.TextColumns(orders)) != 0 {
		t.Fatal()
	}
}
