// Package datagen writes synthetic CSV files shaped like the e-commerce
// dataset, with the published file names and headers and referentially
// closed keys. It exists so the harness can be exercised end to end
// without the real download.
package datagen

import (
	"encoding/csv"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/pingcap/errors"
	"github.com/yilin0518/Advanced-DB/olist"
)

const tsLayout = "2006-01-02 15:04:05"

type Options struct {
	Dir    string
	Seed   int64 // 0 = derive from wall clock
	Orders int
	Tables []string // subset of table names; empty = all
}

// Generate builds one object graph and writes the selected tables' CSV
// files into Dir. It returns data rows written per table. The graph is
// always generated whole, so a written subset still shares consistent
// keys with every other written table.
func Generate(opts Options) (map[string]int, error) {
	if opts.Orders <= 0 {
		opts.Orders = 1000
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().Unix()
	}
	selected := map[string]bool{}
	if len(opts.Tables) == 0 {
		for _, n := range olist.LoadOrder {
			selected[n] = true
		}
	} else {
		for _, n := range opts.Tables {
			if _, ok := olist.TableByName(n); !ok {
				return nil, errors.Errorf("unknown table %q", n)
			}
			selected[n] = true
		}
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, errors.Trace(err)
	}

	g := newGenerator(seed)
	ds := g.build(opts.Orders)

	counts := map[string]int{}
	for _, name := range olist.LoadOrder {
		if !selected[name] {
			continue
		}
		rows := ds.records(name)
		if err := writeTable(opts.Dir, name, rows); err != nil {
			return counts, err
		}
		counts[name] = len(rows)
	}
	return counts, nil
}

func writeTable(dir, table string, rows [][]string) error {
	t, _ := olist.TableByName(table)
	f, err := os.OpenFile(path.Join(dir, olist.SourceFiles[table]), os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0666)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(t.ColumnNames()); err != nil {
		return errors.Trace(err)
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return errors.Trace(err)
		}
	}
	w.Flush()
	return errors.Trace(w.Error())
}

// records renders one table of the graph in the header order declared by
// the dataset schema.
func (ds *dataset) records(table string) [][]string {
	switch table {
	case olist.TCustomers:
		out := make([][]string, 0, len(ds.customers))
		for _, c := range ds.customers {
			cs := cityStates[c.cityIdx]
			out = append(out, []string{c.id, c.uniqueID, c.zip, cs[0], cs[1]})
		}
		return out
	case olist.TGeolocation:
		out := make([][]string, 0, len(ds.geo))
		for _, gr := range ds.geo {
			cs := cityStates[gr.cityIdx]
			out = append(out, []string{
				gr.zip,
				strconv.FormatFloat(gr.lat, 'f', 6, 64),
				strconv.FormatFloat(gr.lng, 'f', 6, 64),
				cs[0], cs[1],
			})
		}
		return out
	case olist.TProducts:
		out := make([][]string, 0, len(ds.products))
		for _, p := range ds.products {
			cat := ""
			if p.categoryIdx >= 0 {
				cat = categories[p.categoryIdx][0]
			}
			out = append(out, []string{
				p.id, cat,
				strconv.Itoa(p.nameLen), strconv.Itoa(p.descLen), strconv.Itoa(p.photos),
				strconv.Itoa(p.weight), strconv.Itoa(p.length), strconv.Itoa(p.height), strconv.Itoa(p.width),
			})
		}
		return out
	case olist.TSellers:
		out := make([][]string, 0, len(ds.sellers))
		for _, s := range ds.sellers {
			cs := cityStates[s.cityIdx]
			out = append(out, []string{s.id, s.zip, cs[0], cs[1]})
		}
		return out
	case olist.TCategoryTranslation:
		out := make([][]string, 0, len(categories))
		for _, c := range categories {
			out = append(out, []string{c[0], c[1]})
		}
		return out
	case olist.TOrders:
		out := make([][]string, 0, len(ds.orders))
		for _, o := range ds.orders {
			out = append(out, []string{
				o.id, ds.customers[o.customer].id, o.status,
				o.purchase.Format(tsLayout),
				optTime(o.approved, o.hasApprove),
				optTime(o.carrier, o.hasCarrier),
				optTime(o.delivered, o.hasDeliver),
				o.estimated.Format(tsLayout),
			})
		}
		return out
	case olist.TOrderItems:
		out := make([][]string, 0, len(ds.items))
		for _, it := range ds.items {
			out = append(out, []string{
				ds.orders[it.order].id,
				strconv.Itoa(it.seq),
				ds.products[it.product].id,
				ds.sellers[it.seller].id,
				it.shipBy.Format(tsLayout),
				strconv.FormatFloat(it.price, 'f', 2, 64),
				strconv.FormatFloat(it.freight, 'f', 2, 64),
			})
		}
		return out
	case olist.TOrderPayments:
		out := make([][]string, 0, len(ds.payments))
		for _, p := range ds.payments {
			out = append(out, []string{
				ds.orders[p.order].id,
				strconv.Itoa(p.seq),
				p.kind,
				strconv.Itoa(p.installments),
				strconv.FormatFloat(p.value, 'f', 2, 64),
			})
		}
		return out
	case olist.TOrderReviews:
		out := make([][]string, 0, len(ds.reviews))
		for _, r := range ds.reviews {
			out = append(out, []string{
				r.id, ds.orders[r.order].id,
				strconv.Itoa(r.score),
				r.title, r.message,
				r.created.Format(tsLayout),
				r.answered.Format(tsLayout),
			})
		}
		return out
	}
	return nil
}

func optTime(t time.Time, ok bool) string {
	if !ok {
		return ""
	}
	return t.Format(tsLayout)
}
