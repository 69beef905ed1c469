// Package metrics holds the prometheus collectors of every pipeline component.
package metrics

const namespace = "chainpulse"

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
