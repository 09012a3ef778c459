package cases

// Prompt texts are data, not logic. They are kept verbatim from the
// assistant's production prompt set; every case keeps its numbered
// analytical requirements.

// systemBase is the fixed system instruction shared by all cases.
const systemBase = `Ты — ИИ-помощник по OKR-методологии для системы Directum Targets.
Ты помогаешь ответственным за цели, руководителям и аналитикам работать с картой стратегических целей.
Отвечай только на русском языке. Используй структурированный формат с заголовками и списками.
Будь конкретным, практичным и аналитичным.`

const case1Intro = "Проанализируй формулировку цели на соответствие SMART-критериям и предложи улучшения."

const case1Task = `## Твоя задача:
1. **SMART-анализ**: оцени каждый критерий (S - конкретность, M - измеримость, A - достижимость, R - релевантность, T - ограниченность во времени) — что выполнено, что нет.
2. **Амбициозность**: оцени, насколько цель амбициозна, но реалистична.
3. **2-3 улучшенных варианта формулировки** с объяснением, что изменилось.
4. **Краткие рекомендации** по улучшению.

Структурируй ответ с заголовками. Будь конкретным.`

const case2Intro = "Сформулируй ключевые результаты (KR) для цели согласно OKR-методологии."

const case2Task = `## Твоя задача:
Предложи **3-4 варианта наборов ключевых результатов** для данной цели:

Для каждого набора:
- Укажи 2-4 конкретных, измеримых KR
- Каждый KR должен быть: конкретным числовым показателем, амбициозным но достижимым, измеримым к концу периода
- Объясни логику набора (на что он ориентирован)

Также дай рекомендации по выбору лучшего набора KR.

Структурируй ответ с заголовками для каждого варианта.`

// case2SituationFmt is the legacy-only current-situation block; the
// placeholder is the goal's existing key-result count.
const case2SituationFmt = `## Текущая ситуация:
- Цель уже имеет %d ключевых результатов (но нам нужны новые варианты)`

const case3Intro = "Выполни декомпозицию годовой цели на квартальные подцели."

// case3TaskFmt carries the goal's current progress in its first item.
const case3TaskFmt = `## Твоя задача:
1. **Анализ текущего прогресса**: что уже сделано (%.0f%% выполнено), что остаётся.
2. **Квартальная декомпозиция** (Q1-Q4 или оставшиеся кварталы):
   - Для каждого квартала: конкретные подцели и ожидаемые результаты
   - Учти сезонность и логику нарастания прогресса
   - Укажи зависимости между кварталами
3. **KPI для каждого квартала**: как измерить успех квартала
4. **Риски разбивки**: что может помешать равномерному прогрессу

Структурируй как план с разделами по кварталам.`

const case3TaskPlain = `## Твоя задача:
1. **Анализ текущего прогресса**: что уже сделано, что остаётся.
2. **Квартальная декомпозиция** (Q1-Q4 или оставшиеся кварталы):
   - Для каждого квартала: конкретные подцели и ожидаемые результаты
   - Учти сезонность и логику нарастания прогресса
   - Укажи зависимости между кварталами
3. **KPI для каждого квартала**: как измерить успех квартала
4. **Риски разбивки**: что может помешать равномерному прогрессу

Структурируй как план с разделами по кварталам.`

const case4Intro = "Проверь, насколько текущая реализация цели соответствует ожиданиям руководства."

// case4NoDocNote is appended to the intro when no supplementary document
// was uploaded on the legacy path.
const case4NoDocNote = `

**Примечание:** DOCX-файл с описанием цели не загружен. Анализ будет ограничен данными из карты целей.`

const case4Task = `## Твоя задача:
1. **Чеклист ожиданий руководства**: выдели из описания (если есть) явные и неявные ожидания руководства.
2. **Анализ соответствия**: для каждого ожидания — выполнено ли оно, частично или нет.
3. **Выявленные расхождения**: что в текущей формулировке/реализации не соответствует ожиданиям.
4. **Рекомендации**: как скорректировать цель или план достижения для лучшего соответствия.

Структурируй как верификационный чеклист.`

const case5Intro = "Проанализируй карту стратегических целей на конфликты, противоречия и слепые зоны."

const case5Task = `## Твоя задача:
1. **Конфликты целей**: есть ли цели, которые противоречат друг другу (конкуренция за ресурсы, разные приоритеты, взаимоисключающие KR)?
2. **Слепые зоны**: какие важные стратегические направления не охвачены в карте?
3. **Дисбаланс приоритетов**: равномерно ли распределены усилия? Нет ли перегруза в одних областях при недостатке в других?
4. **Проблемы структуры**: есть ли цели без логической связи с верхним уровнем? Есть ли «висячие» цели?
5. **Рекомендации**: как устранить выявленные конфликты и закрыть слепые зоны?

Структурируй как аналитический отчёт с разделами.`

const case6Intro = "Выполни анализ рисков недостижения цели на основе текущего прогресса и контекста."

// case6TaskFmt carries the goal's current progress in its first item.
const case6TaskFmt = `## Твоя задача:
1. **Оценка текущего прогресса** (%.0f%%): на сколько реалистично достижение к концу периода?
2. **Матрица рисков** (минимум 4-5 рисков):
   - Название риска
   - Вероятность (Высокая/Средняя/Низкая)
   - Влияние (Высокое/Среднее/Низкое)
   - Описание
   - Способ митигации
3. **Критический путь**: какие зависимости и блокеры могут остановить прогресс?
4. **Рекомендуемые действия**: топ-3 действия для снижения рисков прямо сейчас.

Структурируй как риск-отчёт с таблицей рисков.`

const case6TaskPlain = `## Твоя задача:
1. **Оценка текущего прогресса**: на сколько реалистично достижение к концу периода?
2. **Матрица рисков** (минимум 4-5 рисков):
   - Название риска
   - Вероятность (Высокая/Средняя/Низкая)
   - Влияние (Высокое/Среднее/Низкое)
   - Описание
   - Способ митигации
3. **Критический путь**: какие зависимости и блокеры могут остановить прогресс?
4. **Рекомендуемые действия**: топ-3 действия для снижения рисков прямо сейчас.

Структурируй как риск-отчёт с таблицей рисков.`

const case7Intro = "Подготовь экспресс-отчёт по карте целей для руководства."

const case7Task = `## Твоя задача:
1. **Топ-3 цели с наибольшим отставанием**:
   - Название и код цели
   - Текущий прогресс vs ожидаемый
   - Ключевые проблемы
   - Рекомендуемые действия

2. **Топ-3 цели в хорошем прогрессе** (для контраста и понимания best practices)

3. **Общая картина**: краткая сводка состояния портфеля целей (1-2 абзаца)

4. **Рекомендации для совещания**: на чём сосредоточить внимание руководства на следующей сессии?

Форматируй как управленческий отчёт: кратко, структурированно, по существу.`

const mapSectionHeader = "## Карта целей:"

const mapContextHeader = "## Контекст карты целей:"

const mapDependencyHeader = "## Контекст карты целей (для понимания зависимостей):"
