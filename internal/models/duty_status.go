package models

// DutyStatus статус присутствия сотрудника, вычисляемый из записи
// посещаемости за текущий день. Хранится в точке трекинга в строковом виде.
type DutyStatus string

const (
	DutyNotStarted DutyStatus = "not_started" // смена еще не начата
	DutyOnDuty     DutyStatus = "on_duty"     // отметился на приход, ухода нет
	DutyOffDuty    DutyStatus = "off_duty"    // отметился на уход
)

// ResolveDutyStatus вычисляет статус по записи посещаемости за сегодня.
// Порядок проверок фиксированный: уход имеет приоритет над приходом,
// поэтому запись с заполненными приходом и уходом дает off_duty.
// Функция тотальная: любой вход дает ровно один из трех статусов.
func ResolveDutyStatus(attendance *Attendance) DutyStatus {
	if attendance == nil {
		return DutyNotStarted
	}
	if attendance.ClockOut != nil {
		return DutyOffDuty
	}
	if attendance.ClockIn != nil {
		return DutyOnDuty
	}
	return DutyNotStarted
}
