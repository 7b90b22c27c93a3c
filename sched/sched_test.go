package sched_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nitrolab/nitro/sched"
)

var _ = Describe("Scheduler", func() {
	var (
		s     *sched.Scheduler
		order []string
	)

	task := func(name string) *sched.Task {
		t := &sched.Task{Name: name}
		t.Run = func() {
			order = append(order, name)
		}
		return t
	}

	BeforeEach(func() {
		s = sched.New()
		order = nil
	})

	It("should start with the stop flag set and an empty queue", func() {
		Expect(s.Running.Load()).To(BeTrue())
		Expect(s.Pending()).To(BeFalse())
	})

	Describe("Schedule", func() {
		It("should dequeue in deadline order regardless of insertion order", func() {
			s.Schedule(task("late"), 30)
			s.Schedule(task("early"), 10)
			s.Schedule(task("mid"), 20)

			s.GlobalCycles = 30
			s.RunDue()

			Expect(order).To(Equal([]string{"early", "mid", "late"}))
		})

		It("should keep FIFO order among equal deadlines", func() {
			s.Schedule(task("a"), 10)
			s.Schedule(task("b"), 10)
			s.Schedule(task("c"), 10)

			s.GlobalCycles = 10
			s.RunDue()

			Expect(order).To(Equal([]string{"a", "b", "c"}))
		})

		It("should offset deadlines from the current cursor", func() {
			s.GlobalCycles = 100
			s.Schedule(task("t"), 5)

			Expect(s.NextDeadline()).To(Equal(uint64(105)))
		})

		It("should run tasks scheduled by a running task in the same pass", func() {
			inner := task("inner")
			outer := &sched.Task{Name: "outer"}
			outer.Run = func() {
				order = append(order, "outer")
				s.Schedule(inner, 0)
			}
			s.Schedule(outer, 10)

			s.GlobalCycles = 10
			s.RunDue()

			Expect(order).To(Equal([]string{"outer", "inner"}))
		})
	})

	Describe("RunDue", func() {
		It("should leave future tasks queued", func() {
			s.Schedule(task("now"), 5)
			s.Schedule(task("later"), 15)

			s.GlobalCycles = 5
			s.RunDue()

			Expect(order).To(Equal([]string{"now"}))
			Expect(s.Len()).To(Equal(1))
			Expect(s.TasksRun).To(Equal(uint64(1)))
		})
	})

	Describe("Cancel", func() {
		It("should drop every occurrence of a task and keep the rest stable", func() {
			victim := task("victim")
			s.Schedule(task("a"), 10)
			s.Schedule(victim, 10)
			s.Schedule(task("b"), 10)
			s.Schedule(victim, 20)

			s.Cancel(victim)

			s.GlobalCycles = 20
			s.RunDue()
			Expect(order).To(Equal([]string{"a", "b"}))
		})
	})

	Describe("SubtractCycles", func() {
		It("should preserve relative deadlines", func() {
			s.GlobalCycles = 1000
			s.Schedule(task("a"), 10)
			s.Schedule(task("b"), 20)

			s.SubtractCycles(s.GlobalCycles)
			s.GlobalCycles = 0

			Expect(s.NextDeadline()).To(Equal(uint64(10)))

			s.GlobalCycles = 20
			s.RunDue()
			Expect(order).To(Equal([]string{"a", "b"}))
		})
	})

	Describe("Stop", func() {
		It("should clear the flag exactly once", func() {
			Expect(s.Stop()).To(BeTrue())
			Expect(s.Stop()).To(BeFalse())
			Expect(s.Running.Load()).To(BeFalse())
		})
	})
})
