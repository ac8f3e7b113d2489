package web

import (
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/billed/internal/apiclient"
	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/billstore"
)

var _ = Describe("Integration", func() {
	var (
		db        *billstore.BoltDB
		apiServer *ghttp.Server
		webServer *ghttp.Server
	)

	BeforeEach(func() {
		tempDir := GinkgoT().TempDir()

		var err error
		db, err = billstore.NewBoltDB(filepath.Join(tempDir, "billed.db"))
		Expect(err).NotTo(HaveOccurred())

		storage, err := billstore.NewLocalStorage(filepath.Join(tempDir, "files"))
		Expect(err).NotTo(HaveOccurred())

		auth := billstore.BasicAuth{Username: "admin", Password: "secret"}
		apiServer = ghttp.NewServer()
		service := billstore.NewService(db, storage, apiServer.URL())
		api := billstore.NewServer(service, auth)
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPatch} {
			apiServer.RouteToHandler(method, anyPath, api.ServeHTTP)
		}

		client := apiclient.New(apiServer.URL(), apiclient.WithBasicAuth(auth.Username, auth.Password))
		web := NewServer(func(email string) bill.Store { return client.Bills(email) }, "a@a")
		webServer = ghttp.NewServer()
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			webServer.RouteToHandler(method, anyPath, web.ServeHTTP)
		}
	})

	AfterEach(func() {
		webServer.Close()
		apiServer.Close()
		Expect(db.Close()).To(Succeed())
	})

	It("submits a bill and lists it with its receipt", func() {
		fields := map[string]string{
			"expense-type": "Transports",
			"expense-name": "Vol Paris Londres",
			"datepicker":   "2004-04-04",
			"amount":       "348",
			"vat":          "70",
			"pct":          "",
			"commentary":   "",
		}
		resp, err := noRedirect.Do(newBillRequest(webServer.URL()+"/bills/new", "Taxi Receipt.PNG", fields))
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusSeeOther))

		resp, err = http.Get(webServer.URL() + "/bills")
		Expect(err).NotTo(HaveOccurred())
		body := readBody(resp)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("Vol Paris Londres"))
		Expect(body).To(ContainSubstring("4 Avr. 04"))
		Expect(body).To(ContainSubstring("En attente"))

		bills, err := db.ListBills()
		Expect(err).NotTo(HaveOccurred())
		Expect(bills).To(HaveLen(1))
		stored := bills[0]
		Expect(stored.Email).To(Equal("a@a"))
		Expect(stored.Pct).To(Equal(bill.DefaultPct))
		Expect(stored.FileName).To(Equal("Taxi Receipt.PNG"))
		Expect(stored.FileURL).To(HavePrefix(apiServer.URL() + "/files/"))

		match := regexp.MustCompile(`data-bill-url="([^"]*)"`).FindStringSubmatch(body)
		Expect(match).To(HaveLen(2))
		Expect(match[1]).To(Equal(stored.FileURL))

		resp, err = http.Get(stored.FileURL)
		Expect(err).NotTo(HaveOccurred())
		Expect(readBody(resp)).To(Equal("image bytes"))
		Expect(resp.Header.Get("Content-Type")).To(Equal("image/png"))

		resp, err = http.Get(webServer.URL() + "/bills/" + stored.ID + "/receipt")
		Expect(err).NotTo(HaveOccurred())
		Expect(readBody(resp)).To(ContainSubstring(`data-testid="receipt-image"`))
	})

	It("does not list another employee's bills", func() {
		resp, err := noRedirect.Do(newBillRequest(webServer.URL()+"/bills/new", "test.jpg", map[string]string{"datepicker": "2003-03-03"}))
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusSeeOther))

		req, err := http.NewRequest(http.MethodGet, webServer.URL()+"/bills", nil)
		Expect(err).NotTo(HaveOccurred())
		req.AddCookie(&http.Cookie{Name: "user", Value: "%7B%22email%22%3A%22b%40b%22%7D"})
		resp, err = http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(readBody(resp)).To(ContainSubstring(`data-testid="no-bills"`))
	})

	It("surfaces a rejected API call", func() {
		apiServer.RouteToHandler(http.MethodGet, anyPath, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		})

		resp, err := http.Get(webServer.URL() + "/bills")
		Expect(err).NotTo(HaveOccurred())
		body := readBody(resp)
		Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
		Expect(strings.Contains(body, "Erreur 404")).To(BeTrue())
	})
})
