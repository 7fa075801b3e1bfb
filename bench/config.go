package bench

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pingcap/errors"
	"github.com/yilin0518/Advanced-DB/olist"
	"github.com/yilin0518/Advanced-DB/store"
)

// Profile is one indexed pass over the query battery. The baseline pass
// (no secondary indexes) always runs first and is not configured here.
type Profile struct {
	Name    string            `toml:"name"`
	Indexes []store.IndexSpec `toml:"indexes"`
	Cache   bool              `toml:"cache"`
}

type LoadOptions struct {
	DatasetDir string   `toml:"dataset-dir"`
	BatchSize  int      `toml:"batch-size"`
	Workers    int      `toml:"workers"`
	Recreate   bool     `toml:"recreate"`
	Auto       bool     `toml:"auto"` // load even when tables already hold data
	Tables     []string `toml:"tables"`
}

type RunOptions struct {
	Repetitions int      `toml:"repetitions"`
	Scenarios   []string `toml:"scenarios"`
	Kinds       []Kind   `toml:"kinds"`
	Seed        int64    `toml:"seed"` // 0 = derive from wall clock
	SamplePool  int      `toml:"sample-pool"`
	SampleScan  int      `toml:"sample-scan"`
	CachePass   bool     `toml:"cache-pass"`
	CacheTTL    int      `toml:"cache-ttl-seconds"`
}

// Options is the full harness configuration, decoded from one TOML file
// and optionally overridden from the environment.
type Options struct {
	Store     store.Option `toml:"store"`
	Load      LoadOptions  `toml:"load"`
	Run       RunOptions   `toml:"run"`
	Profiles  []Profile    `toml:"profiles"`
	ReportDir string       `toml:"report-dir"`
}

// DefaultOptions returns the configuration used when the TOML file leaves
// fields unset.
func DefaultOptions() Options {
	return Options{
		Store: store.Option{
			Dialect:  "mysql",
			Addr:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "password",
			DB:       "olist_db",
		},
		Load: LoadOptions{
			DatasetDir: "./dataset",
			BatchSize:  1000,
			Workers:    4,
			Recreate:   true,
		},
		Run: RunOptions{
			Repetitions: 10,
			SamplePool:  50,
			SampleScan:  5000,
			CacheTTL:    300,
		},
		ReportDir: "./report",
	}
}

// DecodeOptions parses a TOML document over the defaults and validates it.
func DecodeOptions(content string) (Options, error) {
	opts := DefaultOptions()
	if _, err := toml.Decode(content, &opts); err != nil {
		return Options{}, errors.Trace(err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// OverlayEnv applies the environment contract on top of the decoded
// options. A .env file in the working directory is honored when present.
func (opts *Options) OverlayEnv() error {
	_ = godotenv.Load()
	if v := os.Getenv("DB_DIALECT"); v != "" {
		opts.Store.Dialect = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		opts.Store.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		opts.Store.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		opts.Store.Addr = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return errors.Errorf("DB_PORT=%q is not a port number", v)
		}
		opts.Store.Port = p
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		opts.Store.DB = v
	}
	if v := os.Getenv("DATASET_DIR"); v != "" {
		opts.Load.DatasetDir = v
	}
	if v := os.Getenv("AUTO_LOAD_DATA"); v != "" {
		opts.Load.Auto = v == "true" || v == "1"
	}
	return opts.Validate()
}

func (opts *Options) Validate() error {
	if _, err := store.Lookup(opts.Store.Dialect); err != nil {
		return err
	}
	if opts.Run.Repetitions < 1 {
		return errors.Errorf("repetitions must be positive, got %v", opts.Run.Repetitions)
	}
	if opts.Load.BatchSize < 1 {
		return errors.Errorf("batch-size must be positive, got %v", opts.Load.BatchSize)
	}
	if opts.Load.Workers < 1 {
		return errors.Errorf("workers must be positive, got %v", opts.Load.Workers)
	}
	if opts.Run.SamplePool < 1 || opts.Run.SampleScan < opts.Run.SamplePool {
		return errors.Errorf("need sample-scan >= sample-pool >= 1, got %v/%v",
			opts.Run.SampleScan, opts.Run.SamplePool)
	}
	for _, t := range opts.Load.Tables {
		if _, ok := olist.TableByName(t); !ok {
			return errors.Errorf("unknown table %q in load.tables", t)
		}
	}
	known := map[string]bool{}
	for _, s := range Battery() {
		known[s.Name] = true
	}
	for _, name := range opts.Run.Scenarios {
		if !known[name] {
			return errors.Errorf("unknown scenario %q in run.scenarios", name)
		}
	}
	for _, k := range opts.Run.Kinds {
		if _, ok := kindNameMap[k]; !ok {
			return errors.Errorf("unknown scenario kind %v in run.kinds", int(k))
		}
	}
	seen := map[string]bool{BaselineProfile: true}
	for _, p := range opts.Profiles {
		if p.Name == "" {
			return errors.New("profile without a name")
		}
		if seen[p.Name] {
			return errors.Errorf("duplicate profile name %q", p.Name)
		}
		seen[p.Name] = true
		for _, idx := range p.Indexes {
			t, ok := olist.TableByName(idx.Table)
			if !ok {
				return errors.Errorf("profile %v: unknown table %q", p.Name, idx.Table)
			}
			if len(idx.Columns) == 0 {
				return errors.Errorf("profile %v: index on %v has no columns", p.Name, idx.Table)
			}
			for _, c := range idx.Columns {
				if _, ok := t.Column(c); !ok {
					return errors.Errorf("profile %v: table %v has no column %q", p.Name, idx.Table, c)
				}
			}
		}
	}
	return nil
}

// BaselineProfile names the implicit first pass with no secondary indexes.
const BaselineProfile = "no-index"

// DefaultIndexes is the tuned index set the harness compares against the
// baseline when no profiles are configured.
func DefaultIndexes() []store.IndexSpec {
	return []store.IndexSpec{
		{Table: olist.TOrders, Name: "idx_orders_customer_id", Columns: []string{"customer_id"}},
		{Table: olist.TOrderItems, Name: "idx_items_order_id", Columns: []string{"order_id"}},
		{Table: olist.TOrderItems, Name: "idx_items_product_id", Columns: []string{"product_id"}},
		{Table: olist.TProducts, Name: "idx_products_product_id", Columns: []string{"product_id"}},
		{Table: olist.TCustomers, Name: "idx_customers_customer_id", Columns: []string{"customer_id"}},
		{Table: olist.TOrders, Name: "idx_orders_date", Columns: []string{"order_purchase_timestamp"}},
		{Table: olist.TOrderItems, Name: "idx_items_price", Columns: []string{"price"}},
		{Table: olist.TCustomers, Name: "idx_customers_city", Columns: []string{"customer_city"}},
		{Table: olist.TProducts, Name: "idx_products_category", Columns: []string{"product_category_name"}},
		{Table: olist.TOrderReviews, Name: "idx_reviews_comment", Columns: []string{"review_comment_message"}, Prefix: 100},
	}
}

// EffectiveProfiles returns the non-baseline passes of the run: the
// configured profiles, or the default tuned pass (plus a cached variant
// when cache-pass is set).
func (opts *Options) EffectiveProfiles() []Profile {
	if len(opts.Profiles) > 0 {
		return opts.Profiles
	}
	ps := []Profile{{Name: "tuned", Indexes: DefaultIndexes()}}
	if opts.Run.CachePass {
		ps = append(ps, Profile{Name: "tuned+cache", Indexes: DefaultIndexes(), Cache: true})
	}
	return ps
}
