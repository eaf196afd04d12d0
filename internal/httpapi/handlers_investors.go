package httpapi

import "net/http"

func (a *api) handleInvestorMetrics(w http.ResponseWriter, r *http.Request) {
	series, err := a.investorSvc.ChartSeries(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"series": series})
}
