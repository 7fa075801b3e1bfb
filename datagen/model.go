package datagen

import (
	"encoding/hex"
	"math"
	"math/rand"
	"time"
)

// Vocabulary for the synthetic dataset. City/state pairs and category
// names follow the shapes of the published data so generated files load
// through the same cleaning rules as the real ones.
var cityStates = [][2]string{
	{"sao paulo", "SP"}, {"rio de janeiro", "RJ"}, {"belo horizonte", "MG"},
	{"brasilia", "DF"}, {"curitiba", "PR"}, {"campinas", "SP"},
	{"porto alegre", "RS"}, {"salvador", "BA"}, {"guarulhos", "SP"},
	{"sao bernardo do campo", "SP"}, {"niteroi", "RJ"}, {"santo andre", "SP"},
	{"osasco", "SP"}, {"santos", "SP"}, {"goiania", "GO"},
	{"sao jose dos campos", "SP"}, {"fortaleza", "CE"}, {"sorocaba", "SP"},
	{"recife", "PE"}, {"florianopolis", "SC"}, {"ribeirao preto", "SP"},
	{"jundiai", "SP"}, {"belem", "PA"}, {"contagem", "MG"},
	{"uberlandia", "MG"}, {"vitoria", "ES"}, {"londrina", "PR"},
	{"joinville", "SC"}, {"manaus", "AM"}, {"natal", "RN"},
}

var categories = [][2]string{
	{"cama_mesa_banho", "bed_bath_table"},
	{"beleza_saude", "health_beauty"},
	{"esporte_lazer", "sports_leisure"},
	{"moveis_decoracao", "furniture_decor"},
	{"informatica_acessorios", "computers_accessories"},
	{"utilidades_domesticas", "housewares"},
	{"relogios_presentes", "watches_gifts"},
	{"telefonia", "telephony"},
	{"ferramentas_jardim", "garden_tools"},
	{"automotivo", "auto"},
	{"brinquedos", "toys"},
	{"cool_stuff", "cool_stuff"},
	{"perfumaria", "perfumery"},
	{"bebes", "baby"},
	{"eletronicos", "electronics"},
	{"papelaria", "stationery"},
	{"fashion_bolsas_e_acessorios", "fashion_bags_accessories"},
	{"pet_shop", "pet_shop"},
	{"moveis_escritorio", "office_furniture"},
	{"consoles_games", "consoles_games"},
}

var paymentTypes = []string{"credit_card", "boleto", "voucher", "debit_card"}

var reviewPhrases = []string{
	"Produto excelente, chegou antes do prazo.",
	"Os produtos estão em perfeito estado, recomendo a loja.",
	"Entrega rápida e produto conforme anunciado.",
	"Não recebi o produto até hoje.",
	"Qualidade abaixo do esperado.",
	"Muito bom, comprarei novamente.",
	"O pedido chegou quebrado, péssima embalagem.",
	"Os itens estão de acordo com a descrição.",
	"Demorou mas chegou tudo certo.",
	"Atendimento ruim, produto errado.",
	"Superou minhas expectativas.",
	"As peças estão funcionando perfeitamente.",
}

var reviewTitles = []string{"Recomendo", "Muito bom", "Ruim", "Perfeito", "Ok"}

type customerRow struct {
	id, uniqueID, zip string
	cityIdx           int
}

type sellerRow struct {
	id, zip string
	cityIdx int
}

type productRow struct {
	id          string
	categoryIdx int // -1 for the occasional uncategorized product
	nameLen     int
	descLen     int
	photos      int
	weight      int
	length      int
	height      int
	width       int
}

type orderRow struct {
	id         string
	customer   int
	status     string
	purchase   time.Time
	approved   time.Time
	carrier    time.Time
	delivered  time.Time
	estimated  time.Time
	hasApprove bool
	hasCarrier bool
	hasDeliver bool
}

type itemRow struct {
	order   int
	seq     int
	product int
	seller  int
	shipBy  time.Time
	price   float64
	freight float64
}

type paymentRow struct {
	order        int
	seq          int
	kind         string
	installments int
	value        float64
}

type reviewRow struct {
	id       string
	order    int
	score    int
	title    string
	message  string
	created  time.Time
	answered time.Time
}

type geoRow struct {
	zip     string
	lat     float64
	lng     float64
	cityIdx int
}

// dataset is the fully generated, referentially closed object graph.
type dataset struct {
	customers []customerRow
	sellers   []sellerRow
	products  []productRow
	orders    []orderRow
	items     []itemRow
	payments  []paymentRow
	reviews   []reviewRow
	geo       []geoRow
	zips      []string
	zipCity   []int
}

type generator struct {
	rng      *rand.Rand
	cityZipf *rand.Zipf
	catZipf  *rand.Zipf
}

func newGenerator(seed int64) *generator {
	rng := rand.New(rand.NewSource(seed))
	return &generator{
		rng:      rng,
		cityZipf: rand.NewZipf(rng, 1.3, 2, uint64(len(cityStates)-1)),
		catZipf:  rand.NewZipf(rng, 1.2, 2, uint64(len(categories)-1)),
	}
}

func (g *generator) hexID() string {
	b := make([]byte, 16)
	g.rng.Read(b)
	return hex.EncodeToString(b)
}

func (g *generator) zip5() string {
	digits := make([]byte, 5)
	for i := range digits {
		digits[i] = byte('0' + g.rng.Intn(10))
	}
	return string(digits)
}

func (g *generator) timeIn(from time.Time, days int) time.Time {
	return from.Add(time.Duration(g.rng.Int63n(int64(days)*24*3600)) * time.Second)
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

// price follows a lognormal-ish spread with a long tail so the 500-1000
// range scan has rows to find.
func (g *generator) price() float64 {
	p := math.Exp(g.rng.NormFloat64()*0.9 + 4.2)
	if p < 3.9 {
		p = 3.9
	}
	if p > 6000 {
		p = 6000
	}
	return round2(p)
}

func (g *generator) build(orders int) *dataset {
	ds := &dataset{}
	span := time.Date(2016, 10, 1, 0, 0, 0, 0, time.UTC)

	// Zip pool shared by geolocation, customers and sellers.
	nZips := orders / 4
	if nZips < 20 {
		nZips = 20
	}
	if nZips > 1000 {
		nZips = 1000
	}
	seen := map[string]bool{}
	for len(ds.zips) < nZips {
		z := g.zip5()
		if seen[z] {
			continue
		}
		seen[z] = true
		ds.zips = append(ds.zips, z)
		ds.zipCity = append(ds.zipCity, int(g.cityZipf.Uint64()))
	}
	for i, z := range ds.zips {
		ds.geo = append(ds.geo, geoRow{
			zip:     z,
			lat:     -30 + g.rng.Float64()*27, // Brazil latitude band
			lng:     -60 + g.rng.Float64()*25,
			cityIdx: ds.zipCity[i],
		})
	}

	nCustomers := orders
	for i := 0; i < nCustomers; i++ {
		zi := g.rng.Intn(len(ds.zips))
		c := customerRow{id: g.hexID(), zip: ds.zips[zi], cityIdx: ds.zipCity[zi]}
		// A slice of shoppers comes back under the same unique id.
		if i > 0 && g.rng.Float64() < 0.04 {
			c.uniqueID = ds.customers[g.rng.Intn(i)].uniqueID
		} else {
			c.uniqueID = g.hexID()
		}
		ds.customers = append(ds.customers, c)
	}

	nSellers := orders / 80
	if nSellers < 5 {
		nSellers = 5
	}
	for i := 0; i < nSellers; i++ {
		zi := g.rng.Intn(len(ds.zips))
		ds.sellers = append(ds.sellers, sellerRow{id: g.hexID(), zip: ds.zips[zi], cityIdx: ds.zipCity[zi]})
	}

	nProducts := orders / 25
	if nProducts < 20 {
		nProducts = 20
	}
	for i := 0; i < nProducts; i++ {
		p := productRow{
			id:          g.hexID(),
			categoryIdx: int(g.catZipf.Uint64()),
			nameLen:     20 + g.rng.Intn(40),
			descLen:     100 + g.rng.Intn(2900),
			photos:      1 + g.rng.Intn(8),
			weight:      50 + g.rng.Intn(30000),
			length:      5 + g.rng.Intn(95),
			height:      2 + g.rng.Intn(60),
			width:       5 + g.rng.Intn(60),
		}
		if g.rng.Float64() < 0.015 {
			p.categoryIdx = -1
		}
		ds.products = append(ds.products, p)
	}

	for i := 0; i < orders; i++ {
		o := orderRow{
			id:       g.hexID(),
			customer: i, // one order per customer row, like the source data
			purchase: g.timeIn(span, 700),
		}
		o.estimated = o.purchase.Add(time.Duration(5+g.rng.Intn(25)) * 24 * time.Hour)
		switch r := g.rng.Float64(); {
		case r < 0.96:
			o.status = "delivered"
			o.hasApprove, o.hasCarrier, o.hasDeliver = true, true, true
		case r < 0.975:
			o.status = "shipped"
			o.hasApprove, o.hasCarrier = true, true
		case r < 0.99:
			o.status = "canceled"
			o.hasApprove = g.rng.Float64() < 0.5
		default:
			o.status = "processing"
			o.hasApprove = true
		}
		if o.hasApprove {
			o.approved = o.purchase.Add(time.Duration(1+g.rng.Intn(48)) * time.Hour)
		}
		if o.hasCarrier {
			o.carrier = o.approved.Add(time.Duration(12+g.rng.Intn(6*24)) * time.Hour)
		}
		if o.hasDeliver {
			o.delivered = o.carrier.Add(time.Duration(24+g.rng.Intn(18*24)) * time.Hour)
		}
		ds.orders = append(ds.orders, o)

		nItems := 1 + int(g.rng.ExpFloat64()*0.5)
		if nItems > 4 {
			nItems = 4
		}
		total := 0.0
		for s := 1; s <= nItems; s++ {
			it := itemRow{
				order:   i,
				seq:     s,
				product: g.rng.Intn(nProducts),
				seller:  g.rng.Intn(nSellers),
				shipBy:  o.purchase.Add(time.Duration(3+g.rng.Intn(7)) * 24 * time.Hour),
				price:   g.price(),
				freight: round2(8 + g.rng.Float64()*45),
			}
			total += it.price + it.freight
			ds.items = append(ds.items, it)
		}

		ds.payments = append(ds.payments, paymentRow{
			order:        i,
			seq:          1,
			kind:         paymentTypes[g.rng.Intn(len(paymentTypes))],
			installments: 1 + g.rng.Intn(10),
			value:        round2(total),
		})

		if g.rng.Float64() < 0.8 {
			rv := reviewRow{
				id:    g.hexID(),
				order: i,
				score: 1 + g.rng.Intn(5),
			}
			after := o.purchase
			if o.hasDeliver {
				after = o.delivered
			}
			rv.created = after.Add(time.Duration(1+g.rng.Intn(5)) * 24 * time.Hour)
			rv.answered = rv.created.Add(time.Duration(6+g.rng.Intn(72)) * time.Hour)
			if g.rng.Float64() < 0.4 {
				rv.message = reviewPhrases[g.rng.Intn(len(reviewPhrases))]
			}
			if g.rng.Float64() < 0.12 {
				rv.title = reviewTitles[g.rng.Intn(len(reviewTitles))]
			}
			ds.reviews = append(ds.reviews, rv)
		}
	}
	return ds
}
