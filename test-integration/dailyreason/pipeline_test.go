package integration

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dailyreason/dailyreason/internal/api"
	drapp "github.com/dailyreason/dailyreason/internal/app"
	"github.com/dailyreason/dailyreason/internal/auth"
	"github.com/dailyreason/dailyreason/internal/config"
	"github.com/dailyreason/dailyreason/internal/storage"
	"github.com/dailyreason/dailyreason/internal/sync/coordinator"
	"github.com/dailyreason/dailyreason/test-integration/dailyreason/helpers"
)

const invokeSecret = "integration-secret"

var _ = Describe("Daily reason pipeline", Ordered, Label("pipeline"), func() {
	var (
		openai  *helpers.FakeOpenAI
		cms     *helpers.FakeContentful
		app     *drapp.DailyReasonApp
		baseURL string
		entryID string
	)

	BeforeAll(func() {
		openai = helpers.NewFakeOpenAI("Keeps pull requests small and reviewable.")
		cms = helpers.NewFakeContentful()

		dbURL, err := url.Parse(testDB.ConnString)
		Expect(err).NotTo(HaveOccurred())
		password, _ := dbURL.User.Password()

		cfg, err := config.Load(config.WithoutEnvironment(), config.WithValues(map[string]string{
			config.EnvDatabaseURL:               testDB.ConnString,
			config.EnvDatabasePassword:          password,
			config.EnvOpenAIAPIKey:              "sk-integration",
			config.EnvOpenAIBaseURL:             openai.URL,
			config.EnvContentfulSpaceID:         "space1",
			config.EnvContentfulContentType:     "dailyReason",
			config.EnvContentfulManagementToken: "cfpat-integration",
			config.EnvContentfulBaseURL:         cms.URL,
			config.EnvCronInvokeSecret:          invokeSecret,
			config.EnvFallbackReason:            "Fallback: always curious.",
		}))
		Expect(err).NotTo(HaveOccurred())

		app, err = drapp.NewDailyReasonApp(ctx, drapp.WithConfig(cfg), drapp.WithAddress("127.0.0.1:0"))
		Expect(err).NotTo(HaveOccurred())

		go func() {
			defer GinkgoRecover()
			Expect(app.Start(ctx)).To(Succeed())
		}()
		Eventually(app.Addr).ShouldNot(BeNil())
		baseURL = "http://" + app.Addr().String()
	})

	AfterAll(func() {
		Expect(app.Stop(10 * time.Second)).To(Succeed())
		openai.Close()
		cms.Close()
	})

	storedReason := func() string {
		var reason string
		err := testDB.Pool.QueryRow(ctx,
			"SELECT reason FROM daily_reasons WHERE key = $1", storage.DailyReasonKey).Scan(&reason)
		Expect(err).NotTo(HaveOccurred())
		return reason
	}

	linkedEntry := func() string {
		var id string
		err := testDB.Pool.QueryRow(ctx,
			"SELECT contentful_id FROM daily_reason_entry WHERE key = $1", storage.DailyReasonKey).Scan(&id)
		Expect(err).NotTo(HaveOccurred())
		return id
	}

	invoke := func(path string, header http.Header) (int, api.InvokeResponse) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, nil)
		Expect(err).NotTo(HaveOccurred())
		req.Header = header

		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		var body api.InvokeResponse
		if resp.StatusCode == http.StatusOK {
			Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		}
		return resp.StatusCode, body
	}

	schedulerHeader := http.Header{auth.HeaderScheduler: []string{"true"}}
	manualHeader := http.Header{auth.HeaderInvokeSecret: []string{invokeSecret}}

	It("rejects unauthenticated invocations without side effects", func() {
		status, _ := invoke("/", http.Header{auth.HeaderInvokeSecret: []string{"wrong"}})
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(openai.Calls()).To(BeZero())
		Expect(cms.Creates()).To(BeZero())
	})

	It("reports ready once the database is reachable", func() {
		resp, err := http.Get(baseURL + "/readiness")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("stores the reason and creates a published entry on the first scheduled run", func() {
		status, body := invoke("/", schedulerHeader)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Success).To(BeTrue())
		Expect(body.Data).NotTo(BeNil())
		Expect(body.Data.Reason).To(Equal("Keeps pull requests small and reviewable."))

		Expect(storedReason()).To(Equal(body.Data.Reason))

		entryID = linkedEntry()
		entry := cms.Entry(entryID)
		Expect(entry).NotTo(BeNil())
		Expect(entry.Field("body", config.DefaultContentfulLocale)).To(Equal(body.Data.Reason))
		Expect(entry.Field("title", config.DefaultContentfulLocale)).To(Equal(coordinator.Title(body.Data.GeneratedAt)))
		Expect(entry.Sys.PublishedVersion).To(BeNumerically(">", 0))
		Expect(cms.Creates()).To(Equal(1))
	})

	It("updates the linked entry in place on a manual run", func() {
		before := cms.Entry(entryID)
		openai.SetContent("Writes tests before fixing bugs.")

		status, body := invoke("/daily-reason", manualHeader)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Data.Reason).To(Equal("Writes tests before fixing bugs."))

		Expect(storedReason()).To(Equal("Writes tests before fixing bugs."))
		Expect(linkedEntry()).To(Equal(entryID))
		Expect(cms.Creates()).To(Equal(1))

		after := cms.Entry(entryID)
		Expect(after.Field("body", config.DefaultContentfulLocale)).To(Equal("Writes tests before fixing bugs."))
		Expect(after.Sys.Version).To(BeNumerically(">", before.Sys.Version))
	})

	It("recreates the entry and relinks it when the linked entry was deleted", func() {
		cms.Delete(entryID)
		openai.SetContent("Asks good questions early.")

		status, _ := invoke("/", manualHeader)
		Expect(status).To(Equal(http.StatusOK))

		newID := linkedEntry()
		Expect(newID).NotTo(Equal(entryID))
		Expect(cms.Entry(newID).Field("body", config.DefaultContentfulLocale)).To(Equal("Asks good questions early."))
		Expect(cms.Creates()).To(Equal(2))
		entryID = newID
	})

	It("keeps the relational record when the CMS is unavailable", func() {
		cms.SetDown(true)
		DeferCleanup(func() { cms.SetDown(false) })
		openai.SetContent("Documents decisions as they are made.")

		status, body := invoke("/", schedulerHeader)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Success).To(BeTrue())

		Expect(storedReason()).To(Equal("Documents decisions as they are made."))
		Expect(cms.Entry(entryID).Field("body", config.DefaultContentfulLocale)).To(Equal("Asks good questions early."))
	})

	It("falls back to the configured reason when generation keeps failing", func() {
		openai.FailWith(http.StatusInternalServerError)

		status, body := invoke("/", manualHeader)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body.Data.Reason).To(Equal("Fallback: always curious."))
		Expect(storedReason()).To(Equal("Fallback: always curious."))
		Expect(cms.Entry(entryID).Field("body", config.DefaultContentfulLocale)).To(Equal("Fallback: always curious."))
	})
})
