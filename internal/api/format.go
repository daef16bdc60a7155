package telegram

import (
	"fmt"
	"strings"

	app "leaf-doctor/internal/application"
	"leaf-doctor/internal/domain/entity"
)

// cropFromText берёт первое слово подписи или аргумента команды
func cropFromText(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return app.NormalizeCrop(fields[0])
}

// leafBox возвращает рамку листа принятого снимка
func leafBox(d *entity.Diagnosis) *entity.BoundingBox {
	if d == nil || d.Rejected() || d.LeafGate == nil {
		return nil
	}
	return d.LeafGate.OpenCVInfo.BBox
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// formatDiagnosis готовит ответ пользователю
func formatDiagnosis(d *entity.Diagnosis) string {
	var sb strings.Builder

	if d.Rejected() {
		sb.WriteString("🚫 Это не похоже на фото листа.\n")
		fmt.Fprintf(&sb, "Причина: %s\n", d.Details.Reason)
		if r := d.Details.Report.GreenRatio; r != nil {
			fmt.Fprintf(&sb, "Доля зелёного: %s\n", percent(*r))
		}
		sb.WriteString("\n📸 Отправьте чёткое фото одного листа.")
		return sb.String()
	}

	fmt.Fprintf(&sb, "🌿 Культура: %s\n", d.Crop)
	fmt.Fprintf(&sb, "🔬 Диагноз: %s\n", d.Prediction)
	if d.Confidence != nil {
		fmt.Fprintf(&sb, "📊 Уверенность: %s\n", percent(*d.Confidence))
	}

	if len(d.TopK) > 1 {
		sb.WriteString("\nДругие варианты:\n")
		for _, ls := range d.TopK[1:] {
			fmt.Fprintf(&sb, "• %s — %s\n", ls.Label, percent(ls.Score))
		}
	}

	if d.LeafGate != nil && d.LeafGate.MLConfidence != nil {
		fmt.Fprintf(&sb, "\n🍃 Проверка листа: %s\n", percent(*d.LeafGate.MLConfidence))
	}

	if d.Model != "" {
		fmt.Fprintf(&sb, "\nМодель: %s", d.Model)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatHistory перечисляет последние диагнозы
func formatHistory(records []entity.DiagnosisRecord) string {
	if len(records) == 0 {
		return "📭 История пуста."
	}

	var sb strings.Builder
	sb.WriteString("🗂 Последние диагнозы:\n")
	for _, rec := range records {
		ts := rec.CreatedAt.Format("02.01 15:04")
		if !rec.Accepted {
			fmt.Fprintf(&sb, "• %s %s: отклонено (%s)\n", ts, rec.Crop, rec.Reason)
			continue
		}
		line := fmt.Sprintf("• %s %s: %s", ts, rec.Crop, rec.Prediction)
		if rec.Confidence != nil {
			line += " (" + percent(*rec.Confidence) + ")"
		}
		sb.WriteString(line + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
