package bench_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/yilin0518/Advanced-DB/bench"
	"github.com/yilin0518/Advanced-DB/olist"
)

func TestRunPassRetriesThenGivesUp(t *testing.T) {
	conn := testConn(t)
	loader := bench.NewLoader(conn, bench.LoadOptions{
		BatchSize: 10, Workers: 1, Recreate: true,
		Tables: []string{olist.TCustomers},
	})
	if err := loader.EnsureSchema(); err != nil {
		t.Fatal(err)
	}
	if err := conn.Exec("INSERT INTO customers VALUES" +
		" ('c1','u1','01310','sao paulo','SP')," +
		" ('c2','u2','20000','rio de janeiro','RJ')," +
		" ('c3','u3','80000','curitiba','PR')"); err != nil {
		t.Fatal(err)
	}

	// orders is claimed present but was never created, so the date range
	// query fails on both attempts while top-cities keeps measuring
	have := map[string]bool{olist.TOrders: true, olist.TCustomers: true}
	runner := bench.NewRunner(conn, bench.RunOptions{Repetitions: 3, SamplePool: 5, SampleScan: 50},
		rand.New(rand.NewSource(1)))
	scenarios := bench.SelectScenarios([]string{"orders-by-date", "top-cities"}, nil)

	pr, errs := runner.RunPass(bench.Profile{Name: bench.BaselineProfile}, scenarios, have)
	if len(errs) != 1 {
		t.Fatalf("%v", errs)
	}
	var se *bench.ScenarioExecutionError
	if !errors.As(errs[0], &se) {
		t.Fatalf("%T %v", errs[0], errs[0])
	}
	if se.Scenario != "orders-by-date" || se.Profile != bench.BaselineProfile || se.Attempts != 2 {
		t.Fatalf("%+v", se)
	}

	if len(pr.Scenarios) != 2 {
		t.Fatal(len(pr.Scenarios))
	}
	failed := pr.Scenarios[0]
	if failed.Name != "orders-by-date" || failed.Retries != 1 || failed.Error == "" {
		t.Fatalf("%+v", failed)
	}
	// both attempts died on the first repetition, nothing was measured
	if failed.Skipped || len(failed.Samples) != 0 || failed.Summary.Count != 0 {
		t.Fatalf("%+v", failed)
	}
	rest := pr.Scenarios[1]
	if rest.Name != "top-cities" || rest.Skipped || rest.Error != "" || rest.Retries != 0 {
		t.Fatalf("%+v", rest)
	}
	if rest.Summary.Count != 3 || len(rest.Samples) != 3 {
		t.Fatalf("%+v", rest.Summary)
	}
}
