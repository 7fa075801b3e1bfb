package bench_test

import (
	"testing"

	"github.com/yilin0518/Advanced-DB/bench"
)

func TestDecodeOptionsDefaults(t *testing.T) {
	opts, err := bench.DecodeOptions("")
	if err != nil {
		t.Fatal(err)
	}
	if opts.Store.Dialect != "mysql" || opts.Store.Port != 3306 || opts.Store.DB != "olist_db" {
		t.Fatalf("%+v", opts.Store)
	}
	if opts.Load.BatchSize != 1000 || !opts.Load.Recreate || opts.Load.Workers != 4 {
		t.Fatalf("%+v", opts.Load)
	}
	if opts.Run.Repetitions != 10 || opts.Run.SamplePool != 50 || opts.Run.SampleScan != 5000 {
		t.Fatalf("%+v", opts.Run)
	}
	if opts.ReportDir != "./report" {
		t.Fatal(opts.ReportDir)
	}
}

func TestDecodeOptions(t *testing.T) {
	content := `
[store]
dialect = "sqlite"
path = "/tmp/bench.db"
db = "bench"
label = "local-sqlite"

[load]
dataset-dir = "/data/olist"
batch-size = 500
recreate = false
tables = ["customers", "orders"]

[run]
repetitions = 3
seed = 42
scenarios = ["orders-by-customer", "top-cities"]
kinds = ["point-lookup", "olap-aggregation"]
cache-pass = true

[[profiles]]
name = "orders-only"
indexes = [
    { table = "orders", columns = ["customer_id"] },
    { table = "orders", columns = ["order_purchase_timestamp"], name = "idx_by_date" },
]

[[profiles]]
name = "orders-cached"
cache = true
indexes = [{ table = "order_reviews", columns = ["review_comment_message"], prefix = 100 }]
`
	opts, err := bench.DecodeOptions(content)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Store.Dialect != "sqlite" || opts.Store.Path != "/tmp/bench.db" {
		t.Fatalf("%+v", opts.Store)
	}
	// unset fields keep their defaults
	if opts.Load.Workers != 4 || opts.Run.SamplePool != 50 {
		t.Fatal()
	}
	if opts.Load.Recreate || opts.Run.Repetitions != 3 || opts.Run.Seed != 42 {
		t.Fatal()
	}
	if len(opts.Run.Kinds) != 2 ||
		opts.Run.Kinds[0] != bench.KindPointLookup || opts.Run.Kinds[1] != bench.KindAggregation {
		t.Fatalf("%+v", opts.Run.Kinds)
	}
	if len(opts.Profiles) != 2 {
		t.Fatal(len(opts.Profiles))
	}
	p := opts.Profiles[0]
	if p.Name != "orders-only" || len(p.Indexes) != 2 || p.Cache {
		t.Fatalf("%+v", p)
	}
	if p.Indexes[0].IndexName() != "idx_orders_customer_id" {
		t.Fatal(p.Indexes[0].IndexName())
	}
	if p.Indexes[1].IndexName() != "idx_by_date" {
		t.Fatal(p.Indexes[1].IndexName())
	}
	if !opts.Profiles[1].Cache || opts.Profiles[1].Indexes[0].Prefix != 100 {
		t.Fatalf("%+v", opts.Profiles[1])
	}
}

func TestDecodeOptionsRejects(t *testing.T) {
	bad := []string{
		"[store]\ndialect = \"oracle\"",
		"[run]\nrepetitions = 0",
		"[run]\nsample-pool = 100\nsample-scan = 10",
		"[load]\nbatch-size = -1",
		"[load]\ntables = [\"invoices\"]",
		"[run]\nscenarios = [\"orders-by-phone\"]",
		"[run]\nkinds = [\"table-scan\"]",
		"[[profiles]]\nindexes = [{ table = \"orders\", columns = [\"customer_id\"] }]",
		"[[profiles]]\nname = \"no-index\"",
		"[[profiles]]\nname = \"a\"\n[[profiles]]\nname = \"a\"",
		"[[profiles]]\nname = \"a\"\nindexes = [{ table = \"orders\", columns = [\"shipping_cost\"] }]",
		"[[profiles]]\nname = \"a\"\nindexes = [{ table = \"orders\", columns = [] }]",
	}
	for _, content := range bad {
		if _, err := bench.DecodeOptions(content); err == nil {
			t.Fatalf("accepted %q", content)
		}
	}
}

func TestOverlayEnv(t *testing.T) {
	t.Setenv("DB_DIALECT", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "olist_pg")
	t.Setenv("AUTO_LOAD_DATA", "true")

	opts := bench.DefaultOptions()
	if err := opts.OverlayEnv(); err != nil {
		t.Fatal(err)
	}
	if opts.Store.Dialect != "postgres" || opts.Store.Addr != "db.internal" || opts.Store.Port != 5433 {
		t.Fatalf("%+v", opts.Store)
	}
	if opts.Store.DB != "olist_pg" || !opts.Load.Auto {
		t.Fatal()
	}

	t.Setenv("DB_PORT", "not-a-port")
	if err := opts.OverlayEnv(); err == nil {
		t.Fatal("bad DB_PORT accepted")
	}
}

func TestEffectiveProfiles(t *testing.T) {
	opts := bench.DefaultOptions()
	ps := opts.EffectiveProfiles()
	if len(ps) != 1 || ps[0].Name != "tuned" || len(ps[0].Indexes) != 10 {
		t.Fatalf("%+v", ps)
	}

	opts.Run.CachePass = true
	ps = opts.EffectiveProfiles()
	if len(ps) != 2 || ps[1].Name != "tuned+cache" || !ps[1].Cache {
		t.Fatalf("%+v", ps)
	}

	opts.Profiles = []bench.Profile{{Name: "custom"}}
	ps = opts.EffectiveProfiles()
	if len(ps) != 1 || ps[0].Name != "custom" {
		t.Fatalf("%+v", ps)
	}
}
