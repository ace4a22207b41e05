package api

import (
	"fmt"
	"net/http"
)

// CheckHealth reports whether the link table and the ZeroTier service can
// be queried. It always answers 200; Healthy carries the verdict.
// GET /api/v1/health
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthCheckResponse{
		Version: VersionInfo{Version: Version, Date: Date, Commit: Commit},
		Healthy: true,
		Checks:  make(map[string]CheckResult),
	}

	if names, err := h.deps.Links().LinkNames(); err != nil {
		response.Healthy = false
		response.Checks["links"] = CheckResult{Passed: false, Message: "Failed to list interfaces: " + err.Error()}
	} else {
		response.Checks["links"] = CheckResult{Passed: true, Message: fmt.Sprintf("%d interfaces present", len(names))}
	}

	response.Checks["zerotier"] = h.checkZeroTier()
	if !response.Checks["zerotier"].Passed {
		response.Healthy = false
	}

	writeJSONData(w, response)
}

func (h *Handler) checkZeroTier() CheckResult {
	zt := h.deps.ZeroTierClient()
	if zt == nil {
		return CheckResult{Passed: true, Message: "ZeroTier integration disabled"}
	}
	status, err := zt.Status()
	if err != nil {
		return CheckResult{Passed: false, Message: "Failed to reach ZeroTier service: " + err.Error()}
	}
	if !status.Online {
		return CheckResult{Passed: true, Message: fmt.Sprintf("Node %s is offline", status.Address)}
	}
	return CheckResult{Passed: true, Message: fmt.Sprintf("Node %s is online", status.Address)}
}
